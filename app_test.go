package gekko

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	if app.nextState != State(2) {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	app.executeChangeState(2)
	if app.state != State(2) {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	assert.Equal(t, []reflect.Type{reflect.TypeOf(MockResource1{}), reflect.TypeOf(MockResource2{})}, app.resourceOrder)
	assert.Panics(t, func() { app.addResources(MockResource2{}) }, "resources must be pointers")
}

type stepLog struct {
	calls []string
}

type recordModule struct{}

func (recordModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&stepLog{})
	for _, stage := range []Stage{Finale, PreUpdate, Render} {
		name := stage.Name
		app.UseSystem(System(func(l *stepLog) {
			l.calls = append(l.calls, name)
		}).InStage(stage))
	}
	app.UseSystem(System(func(cmd *Commands, l *stepLog) {
		if len(l.calls) >= 6 {
			cmd.Exit()
		}
	}).InStage(Finale))
}

func TestApp_RunStagesInOrderUntilExit(t *testing.T) {
	app := NewApp().UseModules(recordModule{})
	app.Run()

	l, ok := GetResource[stepLog](app.Commands())
	require.True(t, ok)
	assert.Equal(t, []string{"PreUpdate", "Render", "Finale", "PreUpdate", "Render", "Finale"}, l.calls)
}

func TestApp_StatefulRun(t *testing.T) {
	const (
		menu State = iota
		playing
		done
	)

	var calls []string
	app := NewAppBuilder().UseStates(menu, done).Build()
	app.UseSystem(System(func() { calls = append(calls, "enter menu") }).InState(OnEnter(menu)))
	app.UseSystem(System(func(cmd *Commands) {
		calls = append(calls, "menu")
		cmd.ChangeState(playing)
	}).InState(OnExecute(menu)))
	app.UseSystem(System(func() { calls = append(calls, "exit menu") }).InState(OnExit(menu)))
	app.UseSystem(System(func(cmd *Commands) {
		calls = append(calls, "playing")
		cmd.ChangeState(done)
	}).InState(OnExecute(playing)))
	app.UseSystem(System(func() { calls = append(calls, "always") }).InStage(PostUpdate).InState(Always()))

	app.Run()

	assert.Equal(t, []string{"enter menu", "menu", "always", "exit menu", "playing", "always"}, calls)
	assert.Equal(t, done, app.state)
}

func TestApp_UseSystemPanics(t *testing.T) {
	app := NewApp()
	assert.PanicsWithValue(t, "Stage Missing doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"}))
	})
	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InState(OnEnter(1)))
	})
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(r *MockResource1) {}))
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, strings.HasPrefix(fmt.Sprint(r), "Unable to resolve System dependency"))
	}()
	app.Step()
}

func TestApp_UseStage(t *testing.T) {
	app := NewApp()
	custom := Stage{Name: "Physics"}
	app.UseStage(custom, AfterStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "physics") }).InStage(custom))
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { order = append(order, "update") }))
	app.Step()

	assert.Equal(t, []string{"update", "physics", "post"}, order)
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Nope"})) })
}

func TestApp_CommandsAreFlushedPerStage(t *testing.T) {
	type Health struct{ hp int }
	type Poisoned struct{}

	app := NewApp()
	var eid EntityId
	var seenInUpdate bool
	app.UseSystem(System(func(cmd *Commands) {
		eid = cmd.AddEntity(Health{10})
		assert.False(t, cmd.HasEntity(eid), "additions are buffered until the stage ends")
	}).InStage(PreUpdate))
	app.UseSystem(System(func(cmd *Commands) {
		h, ok := GetComponent[Health](cmd, eid)
		seenInUpdate = ok && h.hp == 10
		cmd.AddComponents(eid, Poisoned{})
	}).InStage(Update))
	app.Step()

	cmd := app.Commands()
	assert.True(t, seenInUpdate)
	assert.True(t, HasComponent[Poisoned](cmd, eid))
	assert.Len(t, cmd.GetAllComponents(eid), 2)

	cmd.RemoveComponents(eid, Poisoned{})
	app.FlushCommands()
	assert.False(t, HasComponent[Poisoned](cmd, eid))

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	assert.False(t, cmd.HasEntity(eid))
	_, ok := GetComponent[Health](cmd, eid)
	assert.False(t, ok)
}

func TestApp_Logger(t *testing.T) {
	var app *App
	assert.NotNil(t, app.Logger())
	assert.Equal(t, NewNopLogger(), NewApp().Logger())

	var out, errOut bytes.Buffer
	l := newLogger("gekko", false, &out, &errOut, 0)
	a := NewApp()
	a.addResources(NewMockResource1("first"), l)
	assert.Same(t, l, a.Logger())

	l.Debugf("hidden")
	l.Infof("hello %d", 1)
	l.SetDebug(true)
	l.Debugf("shown")
	l.Warnf("careful")
	assert.Equal(t, "[gekko] INFO: hello 1\n[gekko] DEBUG: shown\n", out.String())
	assert.Equal(t, "[gekko] WARN: careful\n", errOut.String())
}
