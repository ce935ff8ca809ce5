package detect

// Category buckets signals for the signalsByCategory view of a verdict.
type Category string

const (
	CategoryAutomation      Category = "automation"
	CategoryBrowserFeatures Category = "browser-features"
	CategoryScreen          Category = "screen"
	CategoryWebGL           Category = "webgl"
	CategoryConsistency     Category = "consistency"
	CategoryTiming          Category = "timing"
	CategoryHeaders         Category = "headers"
	CategoryFingerprint     Category = "fingerprint"
	CategoryGeneral         Category = "general"
)

// Verdict labels, derived from the normalised score.
const (
	VerdictHuman      = "human"
	VerdictSuspicious = "suspicious"
	VerdictBot        = "bot"
)

// MaxScore caps the normalised score; the raw weighted sum may exceed it.
const MaxScore = 100

const (
	botThreshold        = 50
	suspiciousThreshold = 25
)

// Result codes carried on synthetic verdicts.
const (
	// CodeMissingEvidence marks an analysis call that arrived without the
	// prerequisite client evidence or a solved JS challenge.
	CodeMissingEvidence = 1005
	// CodeNoJSExecution marks a session whose document fetch was never
	// followed by an analysis call before the deadline.
	CodeNoJSExecution = 1006
)

// Signal is one evaluated rule. Weight counts toward the score only when
// Detected is true; Reason explains whichever outcome was observed.
type Signal struct {
	Name     string   `json:"name"`
	Weight   int      `json:"weight"`
	Detected bool     `json:"detected"`
	Reason   string   `json:"reason"`
	Category Category `json:"category"`
}

// Summary totals the rule run: Flagged + Passed == TotalChecks.
type Summary struct {
	TotalChecks int `json:"totalChecks"`
	Flagged     int `json:"flagged"`
	Passed      int `json:"passed"`
}

// Verdict is the classification returned to clients and written to sinks.
type Verdict struct {
	Verdict           string                `json:"verdict"`
	Score             int                   `json:"score"`
	MaxScore          int                   `json:"maxScore"`
	Confidence        string                `json:"confidence"`
	Signals           []Signal              `json:"signals"`
	AllSignals        []Signal              `json:"allSignals"`
	SignalsByCategory map[Category][]Signal `json:"signalsByCategory"`
	Summary           Summary               `json:"summary"`
	Code              int                   `json:"code,omitempty"`
	Reason            string                `json:"reason,omitempty"`
}

// signal evaluates one rule. hit and miss are the reason texts for the
// detected and clean outcomes; they must differ so a verdict stays
// explainable without re-running the rule.
func signal(name string, cat Category, weight int, detected bool, hit, miss string) Signal {
	reason := miss
	if detected {
		reason = hit
	}
	return Signal{Name: name, Weight: weight, Detected: detected, Reason: reason, Category: cat}
}

// assemble folds a full rule run into a verdict.
func assemble(all []Signal) Verdict {
	raw := 0
	detected := make([]Signal, 0, len(all))
	byCat := make(map[Category][]Signal)
	for _, s := range all {
		if s.Detected {
			raw += s.Weight
			detected = append(detected, s)
		}
		byCat[s.Category] = append(byCat[s.Category], s)
	}
	score := raw
	if score > MaxScore {
		score = MaxScore
	}
	return Verdict{
		Verdict:           verdictFor(score),
		Score:             score,
		MaxScore:          MaxScore,
		Confidence:        confidenceFor(score),
		Signals:           detected,
		AllSignals:        all,
		SignalsByCategory: byCat,
		Summary: Summary{
			TotalChecks: len(all),
			Flagged:     len(detected),
			Passed:      len(all) - len(detected),
		},
	}
}

func verdictFor(score int) string {
	switch {
	case score >= botThreshold:
		return VerdictBot
	case score >= suspiciousThreshold:
		return VerdictSuspicious
	default:
		return VerdictHuman
	}
}

func confidenceFor(score int) string {
	switch {
	case score >= botThreshold:
		return "high"
	case score >= suspiciousThreshold:
		return "medium"
	default:
		return "low"
	}
}

// syntheticVerdict builds the non-weighted bot verdicts. The weighted sum of
// an empty bundle might not reach 100, but these paths demand a definite
// label, so the single signal carries the full score.
func syntheticVerdict(code int, sig Signal, reason string) Verdict {
	return Verdict{
		Verdict:           VerdictBot,
		Score:             MaxScore,
		MaxScore:          MaxScore,
		Confidence:        "high",
		Signals:           []Signal{sig},
		AllSignals:        []Signal{sig},
		SignalsByCategory: map[Category][]Signal{sig.Category: {sig}},
		Summary:           Summary{TotalChecks: 1, Flagged: 1, Passed: 0},
		Code:              code,
		Reason:            reason,
	}
}

// EarlyReject is the verdict for analysis submissions that lack the
// prerequisite evidence; it short-circuits the weighted evaluator.
func EarlyReject() Verdict {
	return syntheticVerdict(CodeMissingEvidence, Signal{
		Name:     "jsExecutionFailed",
		Weight:   MaxScore,
		Detected: true,
		Reason:   "Submission lacks browser evidence or a solved JS challenge",
		Category: CategoryAutomation,
	}, "JS execution could not be confirmed")
}

// TimeoutVerdict is frozen onto a session whose deadline fired before any
// analysis call arrived.
func TimeoutVerdict() Verdict {
	return syntheticVerdict(CodeNoJSExecution, Signal{
		Name:     "noJsExecution",
		Weight:   MaxScore,
		Detected: true,
		Reason:   "Document was fetched but no analysis call followed",
		Category: CategoryAutomation,
	}, "Fetched page but never called /api/bot within 5 seconds (no JS execution)")
}

// BundleIncomplete reports whether a submission must take the early-reject
// path: no positive screen width, no navigator UA, no window object, or a
// JS challenge outcome that is not explicitly valid.
func BundleIncomplete(b Bundle) bool {
	if w, ok := b.Num("screen", "width"); !ok || w <= 0 {
		return true
	}
	if b.Str("navigator", "userAgent") == "" {
		return true
	}
	if b.Section("window") == nil {
		return true
	}
	return !b.Bool("jsChallenge", "valid")
}
