package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"go-analytics-pipeline/internal/model"
)

// Canonicalize converts values JSON cannot represent natively into their
// canonical string form, walking nested records and lists.
func Canonicalize(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, string, bool, json.Number, []byte:
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return val
	case float64:
		return canonicalFloat(val)
	case float32:
		return canonicalFloat(float64(val))
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.Format(time.RFC3339Nano)
	case civil.Date:
		return val.String()
	case civil.DateTime:
		return val.String()
	case civil.Time:
		return val.String()
	case time.Duration:
		return val.String()
	case *big.Rat:
		if val == nil {
			return nil
		}
		return ratString(val)
	case model.GenericRecord:
		return canonicalizeMap(val)
	case map[string]interface{}:
		return canonicalizeMap(val)
	case model.RecordSet:
		out := make([]interface{}, len(val))
		for i, rec := range val {
			out[i] = canonicalizeMap(rec)
		}
		return out
	case []model.GenericRecord:
		return Canonicalize(model.RecordSet(val))
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, rec := range val {
			out[i] = canonicalizeMap(rec)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Canonicalize(item)
		}
		return out
	case []string:
		return val
	case json.Marshaler:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return val
	}
}

func canonicalizeMap(rec map[string]interface{}) map[string]interface{} {
	if rec == nil {
		return nil
	}
	out := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		out[k] = Canonicalize(v)
	}
	return out
}

func canonicalFloat(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return f
	}
}

// ratString renders NUMERIC/BIGNUMERIC values as plain decimals without
// trailing zeros.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(38)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Encode serializes a RecordSet to its JSON document form. A nil set encodes
// as an empty array.
func Encode(rs model.RecordSet) ([]byte, error) {
	if rs == nil {
		rs = model.RecordSet{}
	}
	data, err := json.Marshal(Canonicalize(rs))
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}
