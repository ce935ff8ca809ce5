package detect

import "testing"

func TestBundleAccessors(t *testing.T) {
	b := Bundle{
		"screen": map[string]any{"width": 1920.0, "height": 1080.0},
		"navigator": map[string]any{
			"userAgent": "test",
			"languages": []any{"en-US", "en"},
			"webdriver": true,
		},
		"plugins":    map[string]any{"length": 3.0},
		"connection": map[string]any{},
		"nested":     map[string]any{"inner": map[string]any{"leaf": "deep"}},
		"notObject":  "plain string",
	}

	t.Run("Section", func(t *testing.T) {
		if b.Section("screen") == nil {
			t.Error("Section(screen) = nil, want map")
		}
		if b.Section("missing") != nil {
			t.Error("Section(missing) != nil")
		}
		if b.Section("notObject") != nil {
			t.Error("Section over a non-object should be nil")
		}
		if got := b.Section("nested", "inner").Str("leaf"); got != "deep" {
			t.Errorf("nested section leaf = %q, want deep", got)
		}
	})

	t.Run("Num", func(t *testing.T) {
		if w, ok := b.Num("screen", "width"); !ok || w != 1920 {
			t.Errorf("Num(screen.width) = %v, %v", w, ok)
		}
		if _, ok := b.Num("screen", "missing"); ok {
			t.Error("Num on missing key reported ok")
		}
		if _, ok := b.Num("navigator", "userAgent"); ok {
			t.Error("Num on a string reported ok")
		}
		if got := b.NumOr(7, "screen", "missing"); got != 7 {
			t.Errorf("NumOr default = %v, want 7", got)
		}
	})

	t.Run("Str and Bool", func(t *testing.T) {
		if got := b.Str("navigator", "userAgent"); got != "test" {
			t.Errorf("Str = %q", got)
		}
		if got := b.Str("navigator", "missing"); got != "" {
			t.Errorf("Str on missing = %q, want empty", got)
		}
		if !b.Bool("navigator", "webdriver") {
			t.Error("Bool(navigator.webdriver) = false")
		}
		if b.Bool("screen", "width") {
			t.Error("Bool on a number reported true")
		}
	})

	t.Run("Count", func(t *testing.T) {
		if got := b.Count("navigator", "languages"); got != 2 {
			t.Errorf("Count(array) = %d, want 2", got)
		}
		if got := b.Count("plugins", "length"); got != 3 {
			t.Errorf("Count(number) = %d, want 3", got)
		}
		if got := b.Count("missing", "path"); got != -1 {
			t.Errorf("Count(missing) = %d, want -1", got)
		}
	})

	t.Run("Has", func(t *testing.T) {
		if !b.Has("connection") {
			t.Error("Has(connection) = false")
		}
		if b.Has("bluetooth") {
			t.Error("Has(bluetooth) = true on absent key")
		}
	})

	t.Run("nil receiver", func(t *testing.T) {
		var nilBundle Bundle
		if nilBundle.Section("a") != nil {
			t.Error("nil bundle Section != nil")
		}
		if nilBundle.Str("a", "b") != "" {
			t.Error("nil bundle Str != empty")
		}
		if nilBundle.Bool("a") {
			t.Error("nil bundle Bool != false")
		}
		if nilBundle.Count("a") != -1 {
			t.Error("nil bundle Count != -1")
		}
	})
}
