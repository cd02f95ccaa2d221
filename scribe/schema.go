package scribe

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
)

var clinicalRecordSchema = GenerateSchema[ClinicalRecord]()

// ClinicalRecordSchema returns the JSON schema the structured-completion service must satisfy.
// The returned map is shared; callers must not modify it.
func ClinicalRecordSchema() map[string]interface{} {
	return clinicalRecordSchema
}

// GenerateSchema reflects T into a strict structured-output schema: every property is listed as
// required, properties that T does not mark required become nullable, and no object admits
// additional properties.
func GenerateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureStrictCompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]interface{}, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
	nullType                = "null"
)

func ensureStrictCompliance(schema map[string]interface{}) {
	if hasType(schema, "object") {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
			declared := stringSet(schema[requiredKey])
			requiredFields := make([]string, 0, len(properties))
			for propName, prop := range properties {
				requiredFields = append(requiredFields, propName)
				if _, ok := declared[propName]; ok {
					continue
				}
				if propMap, ok := prop.(map[string]interface{}); ok {
					makeNullable(propMap)
				}
			}
			sort.Strings(requiredFields)
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureStrictCompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		ensureStrictCompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]interface{}); ok {
		ensureStrictCompliance(additionalProps)
	}
}

func hasType(schema map[string]interface{}, want string) bool {
	switch t := schema[typeKey].(type) {
	case string:
		return t == want
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func makeNullable(schema map[string]interface{}) {
	switch t := schema[typeKey].(type) {
	case string:
		if t != nullType {
			schema[typeKey] = []interface{}{t, nullType}
		}
	case []interface{}:
		if !hasType(schema, nullType) {
			schema[typeKey] = append(t, nullType)
		}
	}
}

func stringSet(v interface{}) map[string]struct{} {
	out := map[string]struct{}{}
	list, _ := v.([]interface{})
	for _, item := range list {
		if s, ok := item.(string); ok {
			out[s] = struct{}{}
		}
	}
	return out
}
