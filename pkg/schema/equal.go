package schema

// Equal reports whether a and b describe the same set of permissible
// values: same Kind, same payload, recursively for nested schemas.
func Equal(a, b Schema) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindScalar:
		return a.Scalar == b.Scalar
	case KindStr, KindBytes, KindUnit:
		return true
	case KindOption:
		return Equal(*a.Inner, *b.Inner)
	case KindSeq:
		if (a.SeqLen == nil) != (b.SeqLen == nil) {
			return false
		}
		if a.SeqLen != nil && *a.SeqLen != *b.SeqLen {
			return false
		}
		return Equal(*a.Inner, *b.Inner)
	case KindTuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return false
			}
			if !Equal(a.Fields[i].Schema, b.Fields[i].Schema) {
				return false
			}
		}
		return true
	case KindEnum:
		if len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if a.Variants[i].Name != b.Variants[i].Name {
				return false
			}
			if !Equal(a.Variants[i].Schema, b.Variants[i].Schema) {
				return false
			}
		}
		return true
	case KindRecurse:
		return a.RecurseLevel == b.RecurseLevel
	default:
		return false
	}
}
