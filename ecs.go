package gekko

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// noEntity marks a recycled row.
const noEntity = EntityId(math.MaxUint64)

// Ecs stores components in archetype tables. Iteration order is stable:
// archetypes in creation order, then rows in ascending order.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	archOrder   []archetypeId
	entityIndex map[EntityId]archetypeId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdCounterLock sync.Mutex
	componentIdCounter     componentId
	componentTypeIdMap     map[reflect.Type]componentId
	componentIdTypeMap     map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		entityIdCounter:    EntityId(0),
		componentIdCounter: componentId(0),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

type archetype struct {
	id       archetypeId
	key      archetypeKey
	entities map[EntityId]row
	// rows[r] is the entity stored in row r, or noEntity once recycled.
	rows          []EntityId
	componentData map[componentId]any // typed slices via reflection
	recycled      []row
}

func (arch *archetype) has(id componentId) bool {
	_, ok := arch.componentData[id]
	return ok
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	entityId := ecs.nextEntityId()
	return ecs.insertEntity(entityId, components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	archId, _, arch := ecs.archetypeFromComponents(components...)

	row := ecs.archetypeReserveRow(arch, entityId)
	arch.entities[entityId] = row
	for _, component := range components {
		ecs.writeComponent(arch, row, component)
	}

	ecs.entityIndex[entityId] = archId
	return entityId
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.recycleEntity(entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	srcArchId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	srcArch := ecs.archetypes[srcArchId]
	srcRow := srcArch.entities[entityId]

	dstArchId, _, dstArch := ecs.archetypeFromExtraComponents(srcArch, components...)
	if dstArch == srcArch {
		for _, component := range components {
			ecs.writeComponent(srcArch, srcRow, component)
		}
		return
	}

	dstRow := ecs.archetypeReserveRow(dstArch, entityId)
	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	for _, component := range components {
		ecs.writeComponent(dstArch, dstRow, component)
	}

	ecs.recycleEntity(entityId)

	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	srcArchId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	srcArch := ecs.archetypes[srcArchId]
	srcRow := srcArch.entities[entityId]

	removeSet := make(set[componentId])
	for _, c := range components {
		removeSet[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	var dstKey archetypeKey
	for _, compId := range srcArch.key {
		if _, shouldRemove := removeSet[compId]; !shouldRemove {
			dstKey = append(dstKey, compId)
		}
	}
	if len(dstKey) == len(srcArch.key) {
		return
	}

	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	dstRow := ecs.archetypeReserveRow(dstArch, entityId)

	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	ecs.recycleEntity(entityId)

	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

// moveComponents copies the components both archetypes share.
func (ecs *Ecs) moveComponents(srcArch *archetype, srcRow row, dstArch *archetype, dstRow row) {
	for _, componentId := range srcArch.key {
		if !dstArch.has(componentId) {
			continue
		}
		srcValue := reflectSliceGet(srcArch.componentData[componentId], int(srcRow))
		reflectSliceSet(dstArch.componentData[componentId], int(dstRow), srcValue)
	}
}

func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	reflectValue := reflect.ValueOf(component)
	if reflectValue.Kind() == reflect.Pointer {
		reflectValue = reflectValue.Elem()
	}
	if reflectValue.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", reflectValue.Kind()))
	}

	componentId := ecs.getComponentId(reflectValue.Type())
	reflectSliceSet(dstArch.componentData[componentId], int(dstRow), reflectValue)
}

func (ecs *Ecs) recycleEntity(entityId EntityId) {
	archId := ecs.entityIndex[entityId]
	arch := ecs.archetypes[archId]

	row := arch.entities[entityId]
	arch.recycled = append(arch.recycled, row)
	arch.rows[row] = noEntity

	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) archetypeFromComponents(components ...any) (archetypeId, archetypeKey, *archetype) {
	archKey := ecs.getArchetypeKey(components...)
	archId, arch := ecs.getOrMakeArchetype(archKey)
	return archId, archKey, arch
}

func (ecs *Ecs) archetypeFromExtraComponents(srcArch *archetype, components ...any) (archetypeId, archetypeKey, *archetype) {
	dstArchKey := combineArchetypeKeys(
		srcArch.key,
		ecs.getArchetypeKey(components...),
	)

	dstArchId, dstArch := ecs.getOrMakeArchetype(dstArchKey)
	return dstArchId, dstArchKey, dstArch
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := getArchetypeId(key)

	if arch, ok := ecs.archetypes[id]; ok {
		if !slices.Equal(arch.key, key) {
			panic(fmt.Sprintf("archetype id collision between %v and %v", arch.key, key))
		}
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           slices.Clone(key),
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any),
	}
	for _, componentId := range arch.key {
		arch.componentData[componentId] = reflectSliceMake(ecs.getComponentType(componentId))
	}

	ecs.archetypes[id] = arch
	ecs.archOrder = append(ecs.archOrder, id)
	return id, arch
}

// archetypeReserveRow returns a zeroed row owned by entityId.
func (ecs *Ecs) archetypeReserveRow(arch *archetype, entityId EntityId) row {
	if n := len(arch.recycled); n > 0 {
		r := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		arch.rows[r] = entityId
		for _, componentId := range arch.key {
			reflectSliceZero(arch.componentData[componentId], int(r))
		}
		return r
	}

	r := row(len(arch.rows))
	arch.rows = append(arch.rows, entityId)
	for _, componentId := range arch.key {
		arch.componentData[componentId] = reflectSliceAppendZero(arch.componentData[componentId])
	}
	return r
}

// getArchetypeKey returns the sorted, deduplicated component ids of components.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	var res archetypeKey
	for _, component := range components {
		compType := componentType(component)
		if compType.Kind() != reflect.Struct {
			panic("component should be a struct")
		}
		res = append(res, ecs.getComponentId(compType))
	}
	return dedupAndSortArchetypeKey(res)
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Pointer {
		compType = compType.Elem()
	}
	return compType
}

func combineArchetypeKeys(a archetypeKey, b archetypeKey) archetypeKey {
	return dedupAndSortArchetypeKey(append(slices.Clone(a), b...))
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	b := make([]byte, 8)
	for _, componentId := range key {
		binary.LittleEndian.PutUint64(b, uint64(componentId))
		hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter += 1
	return id
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[componentType]; ok {
		return id
	}
	id := ecs.componentIdCounter
	ecs.componentIdCounter += 1

	ecs.componentTypeIdMap[componentType] = id
	ecs.componentIdTypeMap[id] = componentType
	return id
}

func (ecs *Ecs) getComponentType(componentId componentId) reflect.Type {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if t, ok := ecs.componentIdTypeMap[componentId]; ok {
		return t
	}
	panic("ComponentID not registered")
}

// component returns a pointer to the component of type t on entityId.
func (ecs *Ecs) component(entityId EntityId, t reflect.Type) (reflect.Value, bool) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return reflect.Value{}, false
	}
	arch := ecs.archetypes[archId]
	id := ecs.getComponentId(t)
	data, ok := arch.componentData[id]
	if !ok {
		return reflect.Value{}, false
	}
	return reflectSliceGet(data, int(arch.entities[entityId])).Addr(), true
}

// components lists entityId's components in archetype key order.
func (ecs *Ecs) components(entityId EntityId) []any {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]
	r := int(arch.entities[entityId])

	res := make([]any, 0, len(arch.key))
	for _, componentId := range arch.key {
		res = append(res, reflectSliceGet(arch.componentData[componentId], r).Interface())
	}
	return res
}
