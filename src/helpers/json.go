package helpers

import (
	"encoding/json"
)

// UnmarshalSchema unmarshals the schema map into the specified struct type using generics
// Returns the struct instance and an error if unmarshaling fails
// Usage: schema, err := UnmarshalSchema[MySchemaType](activityCtx.Schema)
func UnmarshalSchema[T any](schema map[string]interface{}) (T, error) {
	var result T
	if schema == nil {
		return result, nil
	}

	jsonData, err := json.Marshal(schema)
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(jsonData, &result)
	return result, err
}

// DeepCopy returns a copy of v that shares no memory with it, going through JSON.
// Only exported, JSON-visible state survives the copy.
func DeepCopy[T any](v T) (T, error) {
	var result T

	jsonData, err := json.Marshal(v)
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(jsonData, &result)
	return result, err
}
