package tools

// Shared input extraction helpers for the built-in tools. Tool input
// arrives as a decoded JSON object; every field is optional on the wire
// so each accessor reports presence.

func extractFilePath(input map[string]any) (string, bool) {
	if s, ok := extractStr(input, "file_path"); ok {
		return s, true
	}
	return extractStr(input, "path")
}

func extractDirectory(input map[string]any) (string, bool) {
	if s, ok := extractStr(input, "path"); ok {
		return s, true
	}
	return extractStr(input, "directory")
}

func extractStr(input map[string]any, key string) (string, bool) {
	s, ok := input[key].(string)
	return s, ok
}

func extractBool(input map[string]any, key string, def bool) bool {
	if b, ok := input[key].(bool); ok {
		return b
	}
	return def
}
