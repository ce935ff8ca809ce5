package detect

// Bundle is the browser evidence blob POSTed by the client collector,
// decoded as loose JSON. The collector's shape is a moving target, so every
// accessor tolerates missing hops and mistyped leaves.
type Bundle map[string]any

// Section walks nested objects along path. It returns nil as soon as a hop
// is absent or not an object, and nil Bundles are safe receivers for every
// accessor below.
func (b Bundle) Section(path ...string) Bundle {
	cur := b
	for _, key := range path {
		if cur == nil {
			return nil
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = Bundle(next)
	}
	return cur
}

// Has reports whether the final key on path exists, regardless of its type.
// Some checks care about presence only (e.g. the connection API).
func (b Bundle) Has(path ...string) bool {
	_, ok := b.value(path)
	return ok
}

// Str returns the string at path, or "" when absent or not a string.
func (b Bundle) Str(path ...string) string {
	v, ok := b.value(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Num returns the number at path. ok is false when the value is absent or
// not numeric; callers that treat absence as zero use NumOr.
func (b Bundle) Num(path ...string) (float64, bool) {
	v, ok := b.value(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// NumOr returns the number at path, or def when absent.
func (b Bundle) NumOr(def float64, path ...string) float64 {
	if n, ok := b.Num(path...); ok {
		return n
	}
	return def
}

// Bool returns the bool at path, false when absent.
func (b Bundle) Bool(path ...string) bool {
	v, ok := b.value(path)
	if !ok {
		return false
	}
	t, _ := v.(bool)
	return t
}

// Count returns the length of the array at path, the value itself when the
// collector ships a pre-counted number, or -1 when absent.
func (b Bundle) Count(path ...string) int {
	v, ok := b.value(path)
	if !ok {
		return -1
	}
	switch n := v.(type) {
	case []any:
		return len(n)
	case float64:
		return int(n)
	}
	return -1
}

func (b Bundle) value(path []string) (any, bool) {
	if b == nil || len(path) == 0 {
		return nil, false
	}
	sec := b.Section(path[:len(path)-1]...)
	if sec == nil {
		return nil, false
	}
	v, ok := sec[path[len(path)-1]]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
