package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go-analytics-pipeline/internal/model"
)

// DecodeRecordSet parses a published artifact back into a RecordSet. A single
// JSON object is accepted as a one-record set and null as an empty set.
func DecodeRecordSet(data []byte) (model.RecordSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	switch doc := raw.(type) {
	case nil:
		return model.RecordSet{}, nil
	case []interface{}:
		rs := make(model.RecordSet, 0, len(doc))
		for i, item := range doc {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("record %d: expected object, got %T", i, item)
			}
			rs = append(rs, model.GenericRecord(m))
		}
		return rs, nil
	case map[string]interface{}:
		return model.RecordSet{model.GenericRecord(doc)}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON structure %T", raw)
	}
}
