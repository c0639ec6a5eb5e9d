package browser

import "encoding/json"

// decodeSlice re-marshals a loosely-typed Evaluate() result (typically
// []interface{} of map[string]interface{}) into a concrete slice type.
func decodeSlice[T any](raw any) ([]T, error) {
	if raw == nil {
		return nil, nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, err
	}
	return out, nil
}
