package task

import (
	"strings"
	"testing"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{in: "", want: FilterAll},
		{in: "all", want: FilterAll},
		{in: "Active", want: FilterActive},
		{in: "todo", want: FilterActive},
		{in: " completed ", want: FilterCompleted},
		{in: "done", want: FilterCompleted},
		{in: "blocked", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterNext(t *testing.T) {
	f := FilterAll
	var seen []string
	for i := 0; i < 4; i++ {
		seen = append(seen, f.String())
		f = f.Next()
	}
	if got := strings.Join(seen, ","); got != "all,active,completed,all" {
		t.Errorf("cycle: got %s", got)
	}
}

func TestValidate(t *testing.T) {
	date := "2024-12-31"
	bad := "2024-13-01"
	tests := []struct {
		name      string
		task      Task
		wantField string
	}{
		{name: "valid", task: Task{Title: "ok", Priority: 1, DueDate: &date}},
		{name: "blank title", task: Task{Title: " \t", Priority: 1}, wantField: "title"},
		{name: "zero priority", task: Task{Title: "ok", Priority: 0}, wantField: "priority"},
		{name: "bad month", task: Task{Title: "ok", Priority: 5, DueDate: &bad}, wantField: "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.task)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field: got %s, want %s", ve.Field, tt.wantField)
			}
			if !strings.HasPrefix(ve.Error(), tt.wantField+": ") {
				t.Errorf("Error(): got %q", ve.Error())
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := (Task{ID: "0123456789abcdef"}).ShortID(); got != "01234567" {
		t.Errorf("ShortID: got %s", got)
	}
	if got := (Task{ID: "abc"}).ShortID(); got != "abc" {
		t.Errorf("ShortID: got %s", got)
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantPath  string
	}{
		{name: "empty array", doc: `[]`, wantValid: true},
		{
			name:      "full task",
			doc:       `[{"id": "a", "title": "x", "completed": false, "created_at": "2024-01-01T00:00:00Z", "due_date": "2024-01-02", "priority": 3, "category": null}]`,
			wantValid: true,
		},
		{name: "not json", doc: `nope`, wantValid: false},
		{name: "missing title", doc: `[{"priority": 1}]`, wantValid: false, wantPath: "[0]"},
		{name: "priority too low", doc: `[{"title": "a"}, {"title": "b", "priority": 0}]`, wantValid: false, wantPath: "[1].priority"},
		{name: "completed not bool", doc: `[{"title": "a", "completed": "yes"}]`, wantValid: false, wantPath: "[0].completed"},
		{name: "due date format", doc: `[{"title": "a", "due_date": "next week"}]`, wantValid: false, wantPath: "[0].due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateDocument([]byte(tt.doc))
			if result.Valid != tt.wantValid {
				t.Fatalf("Valid: got %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantValid {
				if result.Err() != nil {
					t.Errorf("Err() should be nil, got %v", result.Err())
				}
				return
			}
			if result.Err() == nil {
				t.Fatal("Err() should not be nil")
			}
			if tt.wantPath == "" {
				return
			}
			found := false
			for _, err := range result.Errors {
				if de, ok := err.(*DocumentError); ok && de.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no error at %s, got %v", tt.wantPath, result.Errors)
			}
		})
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"#":            "",
		"/0":           "[0]",
		"/2/priority":  "[2].priority",
		"#/1/due_date": "[1].due_date",
		"/a~1b/c~0d":   "a/b.c~d",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSchemaCompiles(t *testing.T) {
	if _, err := Schema(); err != nil {
		t.Fatalf("Schema() failed: %v", err)
	}
	if !strings.Contains(SchemaSource(), "2020-12") {
		t.Error("schema should declare draft 2020-12")
	}
}
