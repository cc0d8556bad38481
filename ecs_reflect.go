package gekko

import (
	"reflect"
)

// Component columns are typed slices held as any; these helpers index them
// without knowing the element type.

func reflectSliceMake(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 4).Interface()
}

// reflectSliceGet returns an addressable element.
func reflectSliceGet(slice any, idx int) reflect.Value {
	return reflect.ValueOf(slice).Index(idx)
}

func reflectSliceSet(slice any, idx int, val reflect.Value) {
	reflect.ValueOf(slice).Index(idx).Set(val)
}

func reflectSliceZero(slice any, idx int) {
	elem := reflect.ValueOf(slice).Index(idx)
	elem.SetZero()
}

func reflectSliceAppendZero(slice any) any {
	s := reflect.ValueOf(slice)
	return reflect.Append(s, reflect.Zero(s.Type().Elem())).Interface()
}
