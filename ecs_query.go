package gekko

import (
	"reflect"
)

// Queries visit matching entities in archetype creation order, then row
// order. Optional components passed to Map are nil on entities lacking them.
type Query1[A any] struct{ filter queryFilter }
type Query2[A, B any] struct{ filter queryFilter }
type Query3[A, B, C any] struct{ filter queryFilter }
type Query4[A, B, C, D any] struct{ filter queryFilter }

type queryFilter struct {
	ecs     *Ecs
	with    []any
	without []any
}

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{queryFilter{ecs: cmd.app.ecs}} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{queryFilter{ecs: cmd.app.ecs}}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{queryFilter{ecs: cmd.app.ecs}}
}
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{queryFilter{ecs: cmd.app.ecs}}
}

func (f queryFilter) withTypes(components ...any) queryFilter {
	f.with = append(append([]any(nil), f.with...), components...)
	return f
}

func (f queryFilter) withoutTypes(components ...any) queryFilter {
	f.without = append(append([]any(nil), f.without...), components...)
	return f
}

func (q Query1[A]) WithTypes(c ...any) Query1[A]    { return Query1[A]{q.filter.withTypes(c...)} }
func (q Query1[A]) WithoutTypes(c ...any) Query1[A] { return Query1[A]{q.filter.withoutTypes(c...)} }

func (q Query2[A, B]) WithTypes(c ...any) Query2[A, B] {
	return Query2[A, B]{q.filter.withTypes(c...)}
}
func (q Query2[A, B]) WithoutTypes(c ...any) Query2[A, B] {
	return Query2[A, B]{q.filter.withoutTypes(c...)}
}

func (q Query3[A, B, C]) WithTypes(c ...any) Query3[A, B, C] {
	return Query3[A, B, C]{q.filter.withTypes(c...)}
}
func (q Query3[A, B, C]) WithoutTypes(c ...any) Query3[A, B, C] {
	return Query3[A, B, C]{q.filter.withoutTypes(c...)}
}

func (q Query4[A, B, C, D]) WithTypes(c ...any) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{q.filter.withTypes(c...)}
}
func (q Query4[A, B, C, D]) WithoutTypes(c ...any) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{q.filter.withoutTypes(c...)}
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	ids := []componentId{componentIdOf[A](q.filter.ecs)}
	q.filter.each(ids, optionals, func(eid EntityId, r int, cols []any) bool {
		return m(eid, columnAt[A](cols[0], r))
	})
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	ecs := q.filter.ecs
	ids := []componentId{componentIdOf[A](ecs), componentIdOf[B](ecs)}
	q.filter.each(ids, optionals, func(eid EntityId, r int, cols []any) bool {
		return m(eid, columnAt[A](cols[0], r), columnAt[B](cols[1], r))
	})
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	ecs := q.filter.ecs
	ids := []componentId{componentIdOf[A](ecs), componentIdOf[B](ecs), componentIdOf[C](ecs)}
	q.filter.each(ids, optionals, func(eid EntityId, r int, cols []any) bool {
		return m(eid, columnAt[A](cols[0], r), columnAt[B](cols[1], r), columnAt[C](cols[2], r))
	})
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	ecs := q.filter.ecs
	ids := []componentId{componentIdOf[A](ecs), componentIdOf[B](ecs), componentIdOf[C](ecs), componentIdOf[D](ecs)}
	q.filter.each(ids, optionals, func(eid EntityId, r int, cols []any) bool {
		return m(eid,
			columnAt[A](cols[0], r), columnAt[B](cols[1], r),
			columnAt[C](cols[2], r), columnAt[D](cols[3], r))
	})
}

// each calls visit for every live row of every archetype that has all
// required ids (or lists them as optional) and passes the type filters.
// cols[i] is nil when ids[i] is an absent optional.
func (f queryFilter) each(ids []componentId, optionals []any, visit func(EntityId, int, []any) bool) {
	ecs := f.ecs
	opt := identifyComponents(ecs, optionals...)
	with := identifyComponents(ecs, f.with...)
	without := identifyComponents(ecs, f.without...)

	cols := make([]any, len(ids))
archetypes:
	for _, archId := range ecs.archOrder {
		arch := ecs.archetypes[archId]
		if len(arch.entities) == 0 {
			continue
		}
		for id := range with {
			if !arch.has(id) {
				continue archetypes
			}
		}
		for id := range without {
			if arch.has(id) {
				continue archetypes
			}
		}
		for i, id := range ids {
			data, ok := arch.componentData[id]
			if !ok {
				if _, optional := opt[id]; !optional {
					continue archetypes
				}
				data = nil
			}
			cols[i] = data
		}

		for r, eid := range arch.rows {
			if eid == noEntity {
				continue
			}
			if !visit(eid, r, cols) {
				return
			}
		}
	}
}

func columnAt[T any](col any, r int) *T {
	if col == nil {
		return nil
	}
	return &col.([]T)[r]
}

func identifyComponents(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId], len(components))
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func componentIdOf[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[T]())
}
