package value

// Object is both a Type (class) and an Obj (instance) value, distinguished
// by IsType, mirroring apexVal.h's ApexObject used for both roles. A Type
// holds member functions and default field values installed by the
// compiler; an Obj is produced by NEW as a deep copy of its Type's entries.
type Object struct {
	Name     string
	IsType   bool
	entries  map[string]Value
	order    []string
	refcount int
}

// NewObject creates an empty Type or Obj with the given name.
func NewObject(name string, isType bool) *Object {
	return &Object{Name: name, IsType: isType, entries: make(map[string]Value)}
}

// Set inserts or updates key's value, following apexVal_objectset's
// retain/release discipline.
func (o *Object) Set(key string, val Value) {
	if old, ok := o.entries[key]; ok {
		Release(old)
		Retain(val)
		o.entries[key] = val
		return
	}
	Retain(val)
	o.entries[key] = val
	o.order = append(o.order, key)
}

// Get looks up key, returning (value, true) on hit.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.entries[key]
	return v, ok
}

// Keys returns field/method names in declaration order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.order...)
}

func (o *Object) free() {
	for _, k := range o.order {
		Release(o.entries[k])
	}
	o.entries = nil
	o.order = nil
}

// Copy produces a deep copy of o as a fresh Obj instance: nested Obj/Type
// values are themselves recursively copied, following apexVal_objectcpy.
// This is what NEW calls to materialize an instance from its Type.
func (o *Object) Copy() *Object {
	clone := NewObject(o.Name, false)
	for _, k := range o.order {
		v := o.entries[k]
		if v.Kind() == Obj || v.Kind() == TypeVal {
			v = NewObj(v.Obj().Copy())
		}
		clone.Set(k, v)
	}
	return clone
}
