package clarity

import "math/big"

// Native converts v into a loosely typed tree:
//
//	int, uint            *big.Int
//	bool                 bool
//	buffer               []byte
//	string-*             string
//	principal            address string ("SP..." or "SP....name")
//	tuple                map[string]any
//	list                 []any
//	none                 nil
//	some, ok, err        map[string]any{"type": ..., "value": ...}
//
// Responses and optionals keep their wrapper so callers can tell (ok x)
// from x, which is why consumers must accept both a bare field and a
// {"value": x} object.
func Native(v Value) any {
	switch v.Type {
	case TypeInt, TypeUint:
		if v.Int == nil {
			return new(big.Int)
		}
		return new(big.Int).Set(v.Int)
	case TypeTrue:
		return true
	case TypeFalse:
		return false
	case TypeBuffer:
		return append([]byte(nil), v.Bytes...)
	case TypeStringASCII, TypeStringUTF8:
		return v.Str
	case TypeStandardPrincipal, TypeContractPrincipal:
		return v.Principal.String()
	case TypeTuple:
		out := make(map[string]any, len(v.Tuple))
		for _, entry := range v.Tuple {
			out[entry.Name] = Native(entry.Value)
		}
		return out
	case TypeList:
		out := make([]any, 0, len(v.List))
		for _, item := range v.List {
			out = append(out, Native(item))
		}
		return out
	case TypeNone:
		return nil
	case TypeSome, TypeResponseOk, TypeResponseErr:
		wrapped := map[string]any{"type": v.Type.String()}
		if v.Inner != nil {
			wrapped["value"] = Native(*v.Inner)
		}
		if v.Type != TypeSome {
			wrapped["success"] = v.Type == TypeResponseOk
		}
		return wrapped
	}
	return nil
}
