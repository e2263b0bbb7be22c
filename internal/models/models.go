package models

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, null, object, or array.
type JSONValue = interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// AsObject returns v as a JSONObject, accepting the plain map type produced by encoding/json.
func AsObject(v JSONValue) (JSONObject, bool) {
	switch o := v.(type) {
	case JSONObject:
		return o, true
	case map[string]interface{}:
		return JSONObject(o), true
	default:
		return nil, false
	}
}

// AsArray returns v as a JSONArray, accepting the plain slice type produced by encoding/json.
func AsArray(v JSONValue) (JSONArray, bool) {
	switch a := v.(type) {
	case JSONArray:
		return a, true
	case []interface{}:
		return JSONArray(a), true
	default:
		return nil, false
	}
}
