package gekko

import "reflect"

// Commands is the system-facing handle to the app. Entity changes are
// buffered until the end of the current stage.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Exit stops Run after the current step.
func (cmd *Commands) Exit() {
	cmd.app.quit = true
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompRemoval{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

func (cmd *Commands) HasEntity(entityId EntityId) bool {
	return cmd.app.ecs.hasEntity(entityId)
}

func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	return cmd.app.ecs.components(entityId)
}

// GetComponent returns a pointer into the entity's stored component.
// The pointer is invalidated by the next flush that moves the entity.
func GetComponent[T any](cmd *Commands, entityId EntityId) (*T, bool) {
	v, ok := cmd.app.ecs.component(entityId, reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return v.Interface().(*T), true
}

func HasComponent[T any](cmd *Commands, entityId EntityId) bool {
	_, ok := GetComponent[T](cmd, entityId)
	return ok
}

func GetResource[T any](cmd *Commands) (*T, bool) {
	r, ok := cmd.app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	t, ok := r.(*T)
	return t, ok
}
