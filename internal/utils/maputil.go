package utils

// NestedValue walks m along keys and returns the value found, or fallback
// when any segment is absent or the intermediate value is not a map.
func NestedValue(m map[string]any, keys []string, fallback any) any {
	current := any(m)
	for _, key := range keys {
		asMap, ok := current.(map[string]any)
		if !ok {
			return fallback
		}
		current, ok = asMap[key]
		if !ok {
			return fallback
		}
	}
	return current
}
