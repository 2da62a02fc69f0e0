package llm

import "github.com/joseph-ayodele/lease-extractor/internal/entity"

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every field is an optional string; unknown keys are rejected so the lenient path
// knows to sanitize.
func BuildRecordJSONSchema() map[string]any {
	addrProps := make(map[string]any, len(entity.AddressFields))
	for _, k := range entity.AddressFields {
		addrProps[k] = stringProp()
	}

	props := make(map[string]any, len(entity.RecordFields)+1)
	for _, k := range entity.RecordFields {
		props[k] = stringProp()
	}
	props["addressData"] = map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           addrProps,
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}
