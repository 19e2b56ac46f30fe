package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/blobstore"
	"go-analytics-pipeline/internal/model"
)

func TestCanonicalizeScalars(t *testing.T) {
	ts := time.Date(2026, 10, 18, 12, 0, 0, 500, time.UTC)
	cases := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"string", "India", "India"},
		{"int", 42, 42},
		{"float", 2.5, 2.5},
		{"bool", true, true},
		{"nil", nil, nil},
		{"time", ts, "2026-10-18T12:00:00.0000005Z"},
		{"time pointer", &ts, "2026-10-18T12:00:00.0000005Z"},
		{"nil time pointer", (*time.Time)(nil), nil},
		{"civil date", civil.Date{Year: 2026, Month: time.October, Day: 1}, "2026-10-01"},
		{"civil datetime", civil.DateTime{Date: civil.Date{Year: 2026, Month: 1, Day: 2}, Time: civil.Time{Hour: 3, Minute: 4, Second: 5}}, "2026-01-02T03:04:05"},
		{"civil time", civil.Time{Hour: 23, Minute: 59, Second: 1}, "23:59:01"},
		{"rational", big.NewRat(5, 2), "2.5"},
		{"integer rational", big.NewRat(6, 2), "3"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"neg inf", math.Inf(-1), "-Infinity"},
		{"duration", 90 * time.Second, "1m30s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonicalize(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Canonicalize(%v) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalizeNested(t *testing.T) {
	day := civil.Date{Year: 2026, Month: time.October, Day: 18}
	in := model.RecordSet{{
		"date": day,
		"top_10_countries": []interface{}{
			map[string]interface{}{"country_name": "India", "as_of": day},
		},
		"tags": []string{"a", "b"},
	}}

	got := Canonicalize(in)
	want := []interface{}{map[string]interface{}{
		"date": "2026-10-18",
		"top_10_countries": []interface{}{
			map[string]interface{}{"country_name": "India", "as_of": "2026-10-18"},
		},
		"tags": []string{"a", "b"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected nested canonical form:\n got %#v\nwant %#v", got, want)
	}

	// the input must not be mutated
	if _, ok := in[0]["date"].(civil.Date); !ok {
		t.Fatalf("expected input record to keep civil.Date, got %T", in[0]["date"])
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	rs := model.RecordSet{
		{
			"date":               civil.Date{Year: 2026, Month: time.September, Day: 30},
			"global_new_cases":   float64(99000),
			"case_fatality_rate": 2.0,
			"top_10_countries": []interface{}{
				map[string]interface{}{"country_name": "Brazil", "new_confirmed": float64(100)},
			},
		},
		{"country_name": "Germany", "population": float64(60000000)},
	}

	data, err := Encode(rs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRecordSet(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := model.RecordSet{
		{
			"date":               "2026-09-30",
			"global_new_cases":   float64(99000),
			"case_fatality_rate": 2.0,
			"top_10_countries": []interface{}{
				map[string]interface{}{"country_name": "Brazil", "new_confirmed": float64(100)},
			},
		},
		{"country_name": "Germany", "population": float64(60000000)},
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, want)
	}
}

func TestEncodeNilAndEmpty(t *testing.T) {
	for _, rs := range []model.RecordSet{nil, {}} {
		data, err := Encode(rs)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if string(data) != "[]" {
			t.Fatalf("expected [], got %s", data)
		}
	}
}

func TestEncodeUnsupportedValue(t *testing.T) {
	_, err := Encode(model.RecordSet{{"ch": make(chan int)}})
	if err == nil {
		t.Fatalf("expected encoding error for channel value")
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	p := NewPublisher(store)
	rs := model.RecordSet{{"b": 2, "a": 1, "date": civil.Date{Year: 2026, Month: 1, Day: 1}}}

	first, err := p.Publish(ctx, "x.json", rs)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	snapshot, _ := store.Get(ctx, "x.json")

	second, err := p.Publish(ctx, "x.json", rs)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	again, _ := store.Get(ctx, "x.json")

	if string(snapshot) != string(again) || string(first.Content) != string(second.Content) {
		t.Fatalf("expected identical artifacts, got %s vs %s", snapshot, again)
	}
	if !reflect.DeepEqual(store.Keys(), []string{"x.json"}) {
		t.Fatalf("expected a single key, got %v", store.Keys())
	}
	if first.RecordCount != 1 || first.ContentType != model.ContentTypeJSON {
		t.Fatalf("unexpected artifact %+v", first)
	}
}

func TestPublishErrorsAreTagged(t *testing.T) {
	ctx := context.Background()
	p := NewPublisher(blobstore.NewMemoryStore())

	if _, err := p.Publish(ctx, "../escape.json", model.RecordSet{}); !apperror.Is(err, apperror.KindPublish) {
		t.Fatalf("expected publish error for bad key, got %v", err)
	}
	if _, err := p.Publish(ctx, "x.json", model.RecordSet{{"f": func() {}}}); !apperror.Is(err, apperror.KindPublish) {
		t.Fatalf("expected publish error for unencodable value, got %v", err)
	}
}

func TestDecodeRecordSet(t *testing.T) {
	rs, err := DecodeRecordSet([]byte(`{"a":1}`))
	if err != nil || len(rs) != 1 || rs[0]["a"] != float64(1) {
		t.Fatalf("expected single object as one record, got %v, %v", rs, err)
	}

	rs, err = DecodeRecordSet([]byte(`null`))
	if err != nil || len(rs) != 0 {
		t.Fatalf("expected null as empty set, got %v, %v", rs, err)
	}

	for _, bad := range []string{"", "  ", "[1,2]", `"text"`, "{"} {
		if _, err := DecodeRecordSet([]byte(bad)); err == nil {
			t.Fatalf("expected error decoding %q", bad)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	rs := model.RecordSet{{"z": 1, "a": 2, "m": 3}}
	first, _ := Encode(rs)
	for i := 0; i < 5; i++ {
		next, _ := Encode(rs)
		if string(next) != string(first) {
			t.Fatalf("encoding changed between calls: %s vs %s", first, next)
		}
	}
	if !strings.HasPrefix(string(first), `[{"a":2`) {
		t.Fatalf("expected sorted keys, got %s", first)
	}
	var check []map[string]int
	if err := json.Unmarshal(first, &check); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
}
