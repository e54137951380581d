package ir

// ResolveNativeTypes marks structs that must be represented by pointer
// rather than by value: those with an array field, and those with a field
// naming a native struct. Sweeps repeat until one adds nothing. It returns
// the number of sweeps that grew the set, which is at most the number of
// structs. Opaque types are never marked.
func (r *Run) ResolveNativeTypes() int {
	grew := 0
	for {
		changed := false
		for _, s := range r.Structs {
			if r.IsNativeName(s.Name) || r.IsOpaque(s.Name) {
				continue
			}
			if r.hasNativeField(s.Item) {
				r.Native.Add(s.Name)
				changed = true
			}
		}
		if !changed {
			return grew
		}
		grew++
	}
}

func (r *Run) hasNativeField(s Struct) bool {
	if HasArrayField(s.Fields) {
		return true
	}
	for _, f := range s.Fields {
		if r.IsNativeType(f.Type) {
			return true
		}
	}
	return false
}
