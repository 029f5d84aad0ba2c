package models

// Field accessors tolerant of the store's loose typing: numbers come back as
// float64 from JSON, but the postgres backend may round-trip ints.

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func numberField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func intField(fields map[string]any, key string) int {
	return int(numberField(fields, key))
}
