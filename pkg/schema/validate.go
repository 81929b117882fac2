package schema

import "fmt"

// ValidationError describes one structural defect found while validating a
// Schema tree: a duplicate name within a Struct or Enum, or a Recurse node
// whose level does not resolve to an ancestor.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate walks s and reports every structural defect found: field or
// variant names that repeat within a single Struct or Enum, and Recurse
// nodes whose level does not land on an enclosing Option/Seq/Tuple-elem/
// Struct-field/Enum-variant frame.
//
// Validate does not require a CoderState; it checks only properties of the
// schema tree itself, independent of any particular encoding session.
func Validate(s Schema) []ValidationError {
	var errs []ValidationError
	validateNode(s, nil, "$", &errs)
	return errs
}

func validateNode(s Schema, ancestors []Schema, path string, errs *[]ValidationError) {
	switch s.Kind {
	case KindOption:
		validateNode(*s.Inner, append(ancestors, s), path+".Option", errs)
	case KindSeq:
		validateNode(*s.Inner, append(ancestors, s), path+".Seq", errs)
	case KindTuple:
		for i, e := range s.Elems {
			validateNode(e, append(ancestors, s), fmt.Sprintf("%s.Tuple[%d]", path, i), errs)
		}
	case KindStruct:
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if seen[f.Name] {
				*errs = append(*errs, ValidationError{Path: path, Message: fmt.Sprintf("duplicate struct field name %q", f.Name)})
			}
			seen[f.Name] = true
		}
		for _, f := range s.Fields {
			validateNode(f.Schema, append(ancestors, s), path+".Struct."+f.Name, errs)
		}
	case KindEnum:
		if len(s.Variants) == 0 {
			*errs = append(*errs, ValidationError{Path: path, Message: "enum has no variants"})
		}
		seen := make(map[string]bool, len(s.Variants))
		for _, v := range s.Variants {
			if seen[v.Name] {
				*errs = append(*errs, ValidationError{Path: path, Message: fmt.Sprintf("duplicate enum variant name %q", v.Name)})
			}
			seen[v.Name] = true
		}
		for _, v := range s.Variants {
			validateNode(v.Schema, append(ancestors, s), path+".Enum."+v.Name, errs)
		}
	case KindRecurse:
		if s.RecurseLevel < 1 {
			*errs = append(*errs, ValidationError{Path: path, Message: "recurse level must be at least 1"})
		} else if s.RecurseLevel > len(ancestors) {
			*errs = append(*errs, ValidationError{Path: path, Message: fmt.Sprintf("recurse(%d) has only %d enclosing levels", s.RecurseLevel, len(ancestors))})
		}
	}
}
