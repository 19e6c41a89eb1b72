package tool

import "math"

// OptionalString extracts a string argument from a loosely-typed
// argument map. A missing key or a value of the wrong type is treated
// as absent: the remote model may omit or mistype optional fields, and
// that must never fault the dispatch.
func OptionalString(args map[string]interface{}, key string) (string, bool) {
	value, exists := args[key]
	if !exists {
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	return s, true
}

// OptionalInt extracts an integer argument from a loosely-typed
// argument map. JSON numbers decode as float64; non-integral values
// and wrong types are treated as absent.
func OptionalInt(args map[string]interface{}, key string) (int, bool) {
	value, exists := args[key]
	if !exists {
		return 0, false
	}
	f, ok := value.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
