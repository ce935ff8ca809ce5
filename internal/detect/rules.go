package detect

import (
	"net/http"
	"strings"
)

// bundleEval carries the evidence plus the derived context the rule
// families keep re-reading.
type bundleEval struct {
	b Bundle
	h http.Header

	ua      string // effective UA: bundle navigator, header fallback
	lowerUA string
	chrome  bool // Chrome-family UA (not Edge)
	mobile  bool
	safari  bool

	hasBrowserData bool
	features       Bundle
}

func newBundleEval(b Bundle, h http.Header) *bundleEval {
	ua := b.Str("navigator", "userAgent")
	if ua == "" {
		ua = h.Get("User-Agent")
	}
	lower := strings.ToLower(ua)
	return &bundleEval{
		b:       b,
		h:       h,
		ua:      ua,
		lowerUA: lower,
		chrome:  strings.Contains(lower, "chrome") && !strings.Contains(lower, "edg"),
		safari:  strings.Contains(lower, "safari") && !strings.Contains(lower, "chrome"),
		mobile: strings.Contains(lower, "mobile") || strings.Contains(lower, "android") ||
			strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad"),
		hasBrowserData: b.Section("screen") != nil || b.Section("window") != nil ||
			b.Section("navigator") != nil,
		features: b.Section("features"),
	}
}

// EvaluateBundle scores a full evidence bundle against every rule family.
// The caller is expected to have applied the early-reject gate first; this
// path always runs the complete rule set so allSignals is stable.
func EvaluateBundle(b Bundle, h http.Header) Verdict {
	e := newBundleEval(b, h)
	var all []Signal
	all = append(all, e.automationSignals()...)
	all = append(all, e.essentialDataSignals()...)
	all = append(all, e.featureSignals()...)
	all = append(all, e.webglSignals()...)
	all = append(all, e.screenSignals()...)
	all = append(all, e.consistencySignals()...)
	all = append(all, e.timingSignals()...)
	all = append(all, e.fingerprintSignals()...)
	all = append(all, e.headerSignals()...)
	return assemble(all)
}
