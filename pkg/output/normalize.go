package output

import "encoding/json"

// dynamicFields are the keys whose values vary run to run and get
// masked when comparing recorded output.
var dynamicFields = map[string]bool{
	"timestamp":       true,
	"uuid":            true,
	"session_id":      true,
	"sessionId":       true,
	"duration_ms":     true,
	"duration_api_ms": true,
	"cwd":             true,
	"version":         true,
	"model":           true,
	"id":              true,
	"parentUuid":      true,
}

// Masked is the placeholder written over dynamic values.
const Masked = "<dynamic>"

// NormalizeLine masks dynamic fields in one JSON line so two captures
// of the same run compare equal. Non-JSON lines pass through unchanged.
func NormalizeLine(line string) string {
	var value any
	if err := json.Unmarshal([]byte(line), &value); err != nil {
		return line
	}
	normalized, err := json.Marshal(maskDynamic(value))
	if err != nil {
		return line
	}
	return string(normalized)
}

func maskDynamic(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			if dynamicFields[key] {
				v[key] = Masked
				continue
			}
			v[key] = maskDynamic(inner)
		}
		return v
	case []any:
		for i, inner := range v {
			v[i] = maskDynamic(inner)
		}
		return v
	default:
		return value
	}
}
