package detect

import "github.com/mssola/useragent"

// UAInfo is the parsed user-agent view attached to detection records. It is
// informational only; rule triggers match the raw string.
type UAInfo struct {
	Browser string `json:"browser,omitempty"`
	Version string `json:"version,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile"`
	Bot     bool   `json:"bot"`
}

// ParseUA parses a raw User-Agent string; nil when empty.
func ParseUA(raw string) *UAInfo {
	if raw == "" {
		return nil
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return &UAInfo{
		Browser: name,
		Version: version,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}
