package gateway

import (
	"testing"
)

type fakeHandle struct {
	url string
}

func (h fakeHandle) URL() string { return h.url }

func TestFirstURLAcrossShapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		wantURL string
		wantOK  bool
	}{
		{"bare string", "https://cdn.example/a.png", "https://cdn.example/a.png", true},
		{"list of strings", []any{"https://cdn.example/a.png", "https://cdn.example/b.png"}, "https://cdn.example/a.png", true},
		{"mapping with url", map[string]any{"url": "https://cdn.example/c.mp4"}, "https://cdn.example/c.mp4", true},
		{"list of mappings", []any{map[string]any{"url": "https://cdn.example/d.mp4"}}, "https://cdn.example/d.mp4", true},
		{"mapping without url", map[string]any{"id": "abc"}, "", false},
		{"mapping with non-string url", map[string]any{"url": 42}, "", false},
		{"unknown shape", 3.14, "", false},
		{"empty string", "", "", false},
		{"nil output", nil, "", false},
		{"empty list", []any{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Result{Output: Normalize(tt.raw)}
			got, ok := res.FirstURL()
			if ok != tt.wantOK {
				t.Fatalf("FirstURL() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.wantURL {
				t.Errorf("FirstURL() = %q, want %q", got, tt.wantURL)
			}
		})
	}
}

func TestFirstURLFromHandle(t *testing.T) {
	res := Result{Output: []OutputItem{HandleItem(fakeHandle{url: "https://cdn.example/h.mp4"})}}
	got, ok := res.FirstURL()
	if !ok || got != "https://cdn.example/h.mp4" {
		t.Errorf("FirstURL() = %q, %v, want handle URL", got, ok)
	}

	empty := Result{Output: []OutputItem{HandleItem(fakeHandle{})}}
	if _, ok := empty.FirstURL(); ok {
		t.Error("FirstURL() ok = true for a handle with no URL")
	}
}

func TestFirstURLUsesFirstItemOnly(t *testing.T) {
	res := Result{Output: Normalize([]any{
		map[string]any{"id": "no-url-here"},
		"https://cdn.example/second.png",
	})}
	if _, ok := res.FirstURL(); ok {
		t.Error("FirstURL() consulted a later item; only the first may be used")
	}
}

func TestNormalizeWrapsSingleValue(t *testing.T) {
	items := Normalize("https://cdn.example/x.png")
	if len(items) != 1 {
		t.Fatalf("Normalize() len = %d, want 1", len(items))
	}
	items = Normalize(nil)
	if len(items) != 0 {
		t.Fatalf("Normalize(nil) len = %d, want 0", len(items))
	}
}
