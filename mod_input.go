package gekko

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	Key0 int = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyN
	KeyP
	KeyEscape
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyPageUp
	KeyPageDown
	KeyLeftBracket
	KeyRightBracket
	KeySemicolon
	KeyApostrophe
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
	KeyF12
	KeyShift
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	numInputs
)

type InputModule struct{}

type Input struct {
	Pressed      [numInputs]bool
	JustPressed  [numInputs]bool
	JustReleased [numInputs]bool

	MouseX, MouseY float64
	// Window size in screen coordinates, the space of MouseX/MouseY.
	WindowWidth, WindowHeight int
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

// set records the state of one key or button for this frame.
func (input *Input) set(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

func inputSystem(cmd *Commands, input *Input) {
	s, ok := GetResource[WindowState](cmd)
	if !ok || s.windowGlfw == nil {
		return
	}
	win := s.windowGlfw

	for _, k := range keyBindings {
		input.set(k.key, win.GetKey(k.glfw) == glfw.Press)
	}
	for _, b := range mouseBindings {
		input.set(b.key, win.GetMouseButton(b.glfw) == glfw.Press)
	}

	input.MouseX, input.MouseY = win.GetCursorPos()
	input.WindowWidth, input.WindowHeight = s.WindowWidth, s.WindowHeight
}

var keyBindings = []struct {
	key  int
	glfw glfw.Key
}{
	{Key0, glfw.Key0},
	{Key1, glfw.Key1},
	{Key2, glfw.Key2},
	{Key3, glfw.Key3},
	{Key4, glfw.Key4},
	{Key5, glfw.Key5},
	{Key6, glfw.Key6},
	{Key7, glfw.Key7},
	{Key8, glfw.Key8},
	{Key9, glfw.Key9},
	{KeyN, glfw.KeyN},
	{KeyP, glfw.KeyP},
	{KeyEscape, glfw.KeyEscape},
	{KeyRight, glfw.KeyRight},
	{KeyLeft, glfw.KeyLeft},
	{KeyDown, glfw.KeyDown},
	{KeyUp, glfw.KeyUp},
	{KeyPageUp, glfw.KeyPageUp},
	{KeyPageDown, glfw.KeyPageDown},
	{KeyLeftBracket, glfw.KeyLeftBracket},
	{KeyRightBracket, glfw.KeyRightBracket},
	{KeySemicolon, glfw.KeySemicolon},
	{KeyApostrophe, glfw.KeyApostrophe},
	{KeyMinus, glfw.KeyMinus},
	{KeyEqual, glfw.KeyEqual},
	{KeyKPPlus, glfw.KeyKPAdd},
	{KeyKPMinus, glfw.KeyKPSubtract},
	{KeyF12, glfw.KeyF12},
	{KeyShift, glfw.KeyLeftShift},
}

var mouseBindings = []struct {
	key  int
	glfw glfw.MouseButton
}{
	{MouseButtonLeft, glfw.MouseButtonLeft},
	{MouseButtonRight, glfw.MouseButtonRight},
	{MouseButtonMiddle, glfw.MouseButtonMiddle},
}
