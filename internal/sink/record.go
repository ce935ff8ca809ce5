package sink

import (
	"time"

	"github.com/google/uuid"

	"github.com/shortontech/gosift/internal/detect"
)

// Tags for the record stream. Each becomes the bracketed prefix of the
// emitted log line.
const (
	TagHeaderAnalysis  = "header-analysis"
	TagChallengeVerify = "challenge-verify"
	TagVisit           = "visit"
	TagBotAnalysis     = "bot-analysis"
	TagBotVerdict      = "bot-verdict"
	TagVisitStatus     = "visit-status"
)

// Record is the envelope for one detection event. Optional sections are
// omitted when empty; timestamp and ip are always present.
type Record struct {
	Tag       string `json:"-"`
	RecordID  string `json:"record_id"`
	Timestamp string `json:"timestamp"` // ISO-8601 UTC
	IP        string `json:"ip"`

	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	UserAgent string         `json:"ua,omitempty"`
	UAParsed  *detect.UAInfo `json:"ua_parsed,omitempty"`

	Verdict  string          `json:"verdict,omitempty"` // headline verdict
	Code     int             `json:"code,omitempty"`
	Analysis *detect.Verdict `json:"analysis,omitempty"` // full verdict object

	Extra map[string]any `json:"extra,omitempty"`
}

// New stamps a fresh envelope for the given tag and client IP.
func New(tag, ip string) Record {
	return Record{
		Tag:       tag,
		RecordID:  uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		IP:        ip,
	}
}
