package apinorm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// FlavorASHA marks the provider whose responses always nest records
// under "results"
const FlavorASHA = "asha"

// Envelope field names probed before the ordered field scan
var namedRecordFields = []string{"results", "data", "items"}

// field preserves one top-level object member in declaration order
type field struct {
	key string
	raw json.RawMessage
}

// Normalize locates the record array within a JSON response body.
// Resolution order, first match wins:
//
//  1. the body itself is an array
//  2. flavor "asha": body.results when it is an array
//  3. body.results, body.data, body.items, in that order
//  4. the first field holding a non-empty array, in declaration order
//  5. the whole body wrapped as a single-element array
//
// The second return is false when the body is not JSON, is null, or is
// a bare scalar; callers report that as a malformed response. Records
// are passed through unchanged.
func Normalize(body []byte, flavor string) ([]interface{}, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	switch trimmed[0] {
	case '[':
		var records []interface{}
		if err := sonic.Unmarshal(trimmed, &records); err != nil {
			return nil, false
		}
		if records == nil {
			records = []interface{}{}
		}
		return records, true

	case '{':
		fields, err := objectFields(trimmed)
		if err != nil {
			return nil, false
		}
		return normalizeObject(trimmed, fields, flavor)

	default:
		return nil, false
	}
}

func normalizeObject(body []byte, fields []field, flavor string) ([]interface{}, bool) {
	if flavor == FlavorASHA {
		if records, ok := arrayField(fields, "results"); ok {
			return records, true
		}
	}

	for _, key := range namedRecordFields {
		if records, ok := arrayField(fields, key); ok {
			return records, true
		}
	}

	for _, f := range fields {
		if records, ok := asArray(f.raw); ok && len(records) > 0 {
			return records, true
		}
	}

	var record map[string]interface{}
	if err := sonic.Unmarshal(body, &record); err != nil {
		return nil, false
	}
	return []interface{}{record}, true
}

// arrayField returns the named field decoded as an array. An empty
// array still matches; a missing or non-array field does not.
func arrayField(fields []field, key string) ([]interface{}, bool) {
	for _, f := range fields {
		if f.key == key {
			return asArray(f.raw)
		}
	}
	return nil, false
}

func asArray(raw json.RawMessage) ([]interface{}, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var records []interface{}
	if err := sonic.Unmarshal(trimmed, &records); err != nil {
		return nil, false
	}
	if records == nil {
		records = []interface{}{}
	}
	return records, true
}

// objectFields walks a JSON object's top-level members in declaration
// order, keeping values raw until a ladder step needs them
func objectFields(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var fields []field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}
