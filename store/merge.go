package store

// DefaultsDeep returns a copy of dst in which every key of src that dst
// lacks is filled in. When both sides hold a nested object the merge
// recurses, so nested fields from src survive a partial dst. Slices and
// scalars in dst always win. Neither argument is modified.
func DefaultsDeep(dst, src Record) Record {

	out := make(Record, len(dst)+len(src))

	for k, v := range dst {
		out[k] = v
	}

	for k, sv := range src {

		dv, ok := out[k]

		if !ok {
			out[k] = copyValue(sv)
			continue
		}

		dm, dok := asRecord(dv)
		sm, sok := asRecord(sv)

		if dok && sok {
			out[k] = map[string]any(DefaultsDeep(dm, sm))
		}
	}

	return out
}

// Defaults is the shallow form: keys of src missing from dst are added.
func Defaults(dst, src Record) Record {

	out := make(Record, len(dst)+len(src))

	for k, v := range src {
		out[k] = v
	}

	for k, v := range dst {
		out[k] = v
	}

	return out
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}

func copyValue(v any) any {
	if m, ok := asRecord(v); ok {
		return map[string]any(DefaultsDeep(m, nil))
	}
	return v
}
