package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

// With sets key unless value is nil or an empty string, so optional fields
// can be chained without branching.
func (e Envelope) With(key string, value any) Envelope {
	switch v := value.(type) {
	case nil:
		return e
	case string:
		if v == "" {
			return e
		}
	}
	e[key] = value
	return e
}
