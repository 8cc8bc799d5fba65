package requirement

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestUnmarshalVariants(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Condition
	}{
		{"null", `null`, nil},
		{"empty", ``, nil},
		{
			"standalone",
			`{"operator":"STANDALONE","courses":["CMPUT 272"]}`,
			&Standalone{Course: "CMPUT 272"},
		},
		{
			"and courses",
			`{"operator":"AND","courses":["MATH 125"," "]}`,
			&Group{Op: OpAnd, Courses: []string{"MATH 125"}},
		},
		{
			"lowercase operator",
			`{"operator":"or","courses":["A 1","B 2"]}`,
			&Group{Op: OpOr, Courses: []string{"A 1", "B 2"}},
		},
		{
			"operator-less",
			`{"courses":["A 1","B 2"]}`,
			&Group{Op: OpNone, Courses: []string{"A 1", "B 2"}},
		},
		{
			"multi-course standalone",
			`{"operator":"STANDALONE","courses":["A 1","B 2"]}`,
			&Group{Op: OpAnd, Courses: []string{"A 1", "B 2"}},
		},
		{
			"wildcard",
			`{"operator":"WILDCARD","pattern":"CMPUT 3xx","description":"any 300-level CMPUT"}`,
			&Wildcard{Pattern: "CMPUT 3xx", Description: "any 300-level CMPUT"},
		},
		{
			"wildcard without pattern",
			`{"operator":"WILDCARD","description":"any science course"}`,
			&Text{Description: "any science course"},
		},
		{
			"descriptive",
			`{"description":"Consent of department"}`,
			&Text{Description: "Consent of department"},
		},
		{
			"malformed lenient",
			`{"operator":"AND"}`,
			&Group{Op: OpAnd},
		},
		{
			"nested with null child",
			`{"operator":"AND","conditions":[{"operator":"OR","courses":["CMPUT 175","CMPUT 274"]},null]}`,
			&Group{Op: OpAnd, Conditions: []Condition{&Group{Op: OpOr, Courses: []string{"CMPUT 175", "CMPUT 274"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.json))
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeStrict(t *testing.T) {
	_, err := Decode([]byte(`{"operator":"AND","conditions":[{"operator":"OR"}]}`), DecodeOptions{Strict: true})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode(strict) error = %v, want ErrMalformed", err)
	}
	if want := "$.conditions[0]"; err == nil || !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should mention path %q", err, want)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"operator":"XOR","courses":["A 1"]}`)); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("unknown operator error = %v, want ErrUnknownOperator", err)
	}
	if _, err := Unmarshal([]byte(`{"operator":`)); err == nil {
		t.Error("truncated JSON should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cond := AllOf(
		Or("CMPUT 175", "CMPUT 274"),
		&Wildcard{Pattern: "MATH 1xx"},
		&Text{Description: "Consent of instructor"},
		Course("STAT 151"),
	)
	data, err := Marshal(cond)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !reflect.DeepEqual(got, Condition(cond)) {
		t.Errorf("round trip = %#v, want %#v", got, cond)
	}

	null, err := Marshal(nil)
	if err != nil || string(null) != "null" {
		t.Errorf("Marshal(nil) = %q, %v; want null", null, err)
	}
}
