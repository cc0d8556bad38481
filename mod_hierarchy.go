package gekko

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(VisibilityHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// maxHierarchyPasses bounds propagation; deeper chains settle over frames.
const maxHierarchyPasses = 16

// TransformHierarchySystem derives world transforms of child entities from
// their parents. Roots keep their LocalTransformComponent in sync with the
// world transform.
func TransformHierarchySystem(cmd *Commands) {
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).WithoutTypes(Parent{}).Map(func(eid EntityId, local *LocalTransformComponent, tr *TransformComponent) bool {
		local.Position = tr.Position
		local.Rotation = tr.Rotation
		local.Scale = tr.Scale
		return true
	})

	for pass := 0; pass < maxHierarchyPasses; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := GetComponent[TransformComponent](cmd, parent.Entity)
			if !ok {
				return true
			}
			next := compose(parentWorld, local)
			if next != *world {
				*world = next
				changed = true
			}
			return true
		})
		if !changed {
			return
		}
	}
}

// VisibilityHierarchySystem sets InheritedHidden on every VisibilityComponent:
// an entity is hidden when it or any ancestor with a VisibilityComponent is.
func VisibilityHierarchySystem(cmd *Commands) {
	MakeQuery1[VisibilityComponent](cmd).WithoutTypes(Parent{}).Map(func(eid EntityId, vis *VisibilityComponent) bool {
		vis.InheritedHidden = vis.Hidden
		return true
	})

	for pass := 0; pass < maxHierarchyPasses; pass++ {
		changed := false
		MakeQuery2[VisibilityComponent, Parent](cmd).Map(func(eid EntityId, vis *VisibilityComponent, parent *Parent) bool {
			hidden := vis.Hidden
			if pv := nearestVisibility(cmd, parent.Entity); pv != nil {
				hidden = hidden || pv.Hidden || pv.InheritedHidden
			}
			if hidden != vis.InheritedHidden {
				vis.InheritedHidden = hidden
				changed = true
			}
			return true
		})
		if !changed {
			return
		}
	}
}

// nearestVisibility returns the VisibilityComponent of eid or of its closest
// ancestor that has one.
func nearestVisibility(cmd *Commands, eid EntityId) *VisibilityComponent {
	for depth := 0; depth < maxHierarchyPasses; depth++ {
		if vis, ok := GetComponent[VisibilityComponent](cmd, eid); ok {
			return vis
		}
		parent, ok := GetComponent[Parent](cmd, eid)
		if !ok {
			return nil
		}
		eid = parent.Entity
	}
	return nil
}
