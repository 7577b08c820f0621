package services

import (
	"reflect"
	"testing"
)

func TestCoerceField(t *testing.T) {
	tests := []struct {
		name  string
		value string
		typ   string
		want  any
	}{
		{"string", "abc", "string", "abc"},
		{"untyped", "12", "", "12"},
		{"true", "true", "boolean", true},
		{"not true", "yes", "boolean", false},
		{"number", "12.5", "number", 12.5},
		{"padded number", " 7 ", "number", 7.0},
		{"empty number", "", "number", 0.0},
		{"not a number", "twelve", "number", "twelve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceField(tt.value, tt.typ); got != tt.want {
				t.Errorf("CoerceField(%q, %q) = %#v, want %#v", tt.value, tt.typ, got, tt.want)
			}
		})
	}
}

func TestAdditionalFields(t *testing.T) {
	got := AdditionalFields([]Field{
		{Key: "limit", Value: "10", Type: "number"},
		{Key: "", Value: "ignored"},
		{Key: "debug", Value: "true", Type: "boolean"},
	})
	want := map[string]any{"limit": 10.0, "debug": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildBody(t *testing.T) {
	additional := map[string]any{"model": "m1", "query": "shadowed"}

	body := BuildBody("query", "plain text prompt", additional)
	if body["query"] != "plain text prompt" {
		t.Errorf("expected prompt string, got %#v", body["query"])
	}
	if body["model"] != "m1" {
		t.Errorf("expected additional field, got %#v", body["model"])
	}
	if additional["query"] != "shadowed" {
		t.Error("expected additional map to be left alone")
	}

	body = BuildBody("input", `{"nested": [1, 2]}`, nil)
	nested, ok := body["input"].(map[string]any)
	if !ok {
		t.Fatalf("expected JSON prompt to be decoded, got %#v", body["input"])
	}
	if !reflect.DeepEqual(nested["nested"], []any{1.0, 2.0}) {
		t.Errorf("unexpected decoded prompt %#v", nested)
	}

	body = BuildBody("", "ignored", map[string]any{"a": 1})
	if len(body) != 1 {
		t.Errorf("expected prompt to be skipped without key, got %v", body)
	}
}

func TestParseSchemaInput(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"id", []string{"id"}},
		{"a, b,,c ,", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := ParseSchemaInput(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseSchemaInput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8080/x": "http://localhost:8080/x",
		"https://api.test/v1":     "https://api.test/v1",
		"api.test/v1":             "https://api.test/v1",
		"/api.test/v1":            "https://api.test/v1",
		"//api.test":              "https:///api.test",
	}
	for in, want := range tests {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMergeHeaders(t *testing.T) {
	got := MergeHeaders(map[string]string{"Authorization": "Bearer t", "": "skip"})
	want := map[string]string{"Content-Type": "application/json", "Authorization": "Bearer t"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got = MergeHeaders(map[string]string{"Content-Type": "text/plain"})
	if got["Content-Type"] != "text/plain" {
		t.Errorf("expected caller header to win, got %v", got)
	}
}
