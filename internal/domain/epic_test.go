package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestStatus_Predicates(t *testing.T) {
	tests := []struct {
		status    Status
		valid     bool
		active    bool
		completed bool
		short     string
	}{
		{StatusPlanning, true, false, false, "P"},
		{StatusActive, true, true, false, "A"},
		{StatusInProgress, true, true, false, "A"},
		{StatusCompleted, true, false, true, "C"},
		{Status("unknown"), false, false, false, "?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.status.IsCompleted(); got != tt.completed {
				t.Errorf("IsCompleted() = %v, want %v", got, tt.completed)
			}
			if got := tt.status.Short(); got != tt.short {
				t.Errorf("Short() = %v, want %v", got, tt.short)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"planning", StatusPlanning, false},
		{" Active ", StatusActive, false},
		{"in-progress", StatusInProgress, false},
		{"in_progress", StatusInProgress, false},
		{"COMPLETED", StatusCompleted, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("ParseStatus(%q) error = %v, want ErrInvalid", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDependsOn(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    []string
		wantErr bool
	}{
		{name: "nil", raw: nil, want: []string{}},
		{name: "empty string", raw: "", want: []string{}},
		{name: "string slice", raw: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "any slice", raw: []any{"a", "b"}, want: []string{"a", "b"}},
		{name: "stringified JSON array", raw: `["a","b"]`, want: []string{"a", "b"}},
		{name: "stringified empty array", raw: "[]", want: []string{}},
		{name: "comma separated", raw: "a, b ,c", want: []string{"a", "b", "c"}},
		{name: "duplicates dropped keeping first", raw: []string{"b", "a", "b"}, want: []string{"b", "a"}},
		{name: "blank entries dropped", raw: []string{"a", " ", ""}, want: []string{"a"}},
		{name: "non-string entry", raw: []any{"a", 3.0}, wantErr: true},
		{name: "broken JSON array", raw: `["a",`, wantErr: true},
		{name: "unsupported type", raw: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDependsOn(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("ParseDependsOn() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDependsOn() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDependsOn() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDeps(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops blanks", []string{" a ", "", "  ", "b"}, []string{"a", "b"}},
		{"first duplicate wins", []string{"b", "a", "b", " a"}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDeps(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeDeps(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEpic_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"array", `{"id":"b","status":"planning","dependsOn":["a"]}`, []string{"a"}},
		{"null", `{"id":"b","status":"planning","dependsOn":null}`, []string{}},
		{"missing", `{"id":"b","status":"planning"}`, []string{}},
		{"stringified", `{"id":"b","status":"planning","dependsOn":"[\"a\",\"c\"]"}`, []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Epic
			if err := json.Unmarshal([]byte(tt.data), &e); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if e.ID != "b" || e.Status != StatusPlanning {
				t.Errorf("Unmarshal() lost fields: %+v", e)
			}
			if !reflect.DeepEqual(e.DependsOn, tt.want) {
				t.Errorf("DependsOn = %#v, want %#v", e.DependsOn, tt.want)
			}
		})
	}

	var e Epic
	if err := json.Unmarshal([]byte(`{"id":"x","dependsOn":[1]}`), &e); !errors.Is(err, ErrInvalid) {
		t.Errorf("numeric dependsOn error = %v, want ErrInvalid", err)
	}
}

func TestEpic_UnmarshalYAML(t *testing.T) {
	data := `
- id: a
  title: Foundation
  status: completed
- id: b
  status: planning
  dependsOn: [a]
- id: c
  status: active
  dependsOn: "a, b"
`
	var epics []Epic
	if err := yaml.Unmarshal([]byte(data), &epics); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	if len(epics) != 3 {
		t.Fatalf("got %d epics, want 3", len(epics))
	}
	if epics[0].Title != "Foundation" || len(epics[0].DependsOn) != 0 {
		t.Errorf("epic a = %+v", epics[0])
	}
	if !reflect.DeepEqual(epics[1].DependsOn, []string{"a"}) {
		t.Errorf("epic b deps = %v", epics[1].DependsOn)
	}
	if !reflect.DeepEqual(epics[2].DependsOn, []string{"a", "b"}) {
		t.Errorf("epic c deps = %v", epics[2].DependsOn)
	}
}

func TestEpic_Validate(t *testing.T) {
	if err := (Epic{ID: "a", Status: StatusPlanning}).Validate(); err != nil {
		t.Errorf("valid epic: %v", err)
	}
	if err := (Epic{Status: StatusPlanning}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing id error = %v", err)
	}
	if err := (Epic{ID: "a", Status: "done"}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad status error = %v", err)
	}
}

func TestEpic_DisplayTitle(t *testing.T) {
	if got := (Epic{ID: "a"}).DisplayTitle(); got != "a" {
		t.Errorf("DisplayTitle() = %q, want id fallback", got)
	}
	if got := (Epic{ID: "a", Title: "Alpha"}).DisplayTitle(); got != "Alpha" {
		t.Errorf("DisplayTitle() = %q", got)
	}
}
