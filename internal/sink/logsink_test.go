package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shortontech/gosift/internal/detect"
)

func TestLogSinkLineFormat(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSinkTo(&buf)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec := New(TagBotVerdict, "203.0.113.7")
	rec.Verdict = detect.VerdictBot
	rec.Code = detect.CodeNoJSExecution
	if err := s.Enqueue(rec); err != nil {
		t.Fatal(err)
	}

	line := buf.String()
	if !strings.HasPrefix(line, "[bot-verdict] ") {
		t.Errorf("line = %q, want bracketed tag prefix", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line is not newline-terminated")
	}

	var decoded map[string]any
	payload := strings.TrimPrefix(strings.TrimSuffix(line, "\n"), "[bot-verdict] ")
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["ip"] != "203.0.113.7" {
		t.Errorf("ip = %v", decoded["ip"])
	}
	if decoded["timestamp"] == nil || decoded["record_id"] == nil {
		t.Errorf("envelope fields missing: %v", decoded)
	}
	if _, tagLeaked := decoded["Tag"]; tagLeaked {
		t.Error("tag serialised into the JSON body; it belongs in the prefix only")
	}
	if decoded["code"] != float64(detect.CodeNoJSExecution) {
		t.Errorf("code = %v, want 1006", decoded["code"])
	}
}

func TestLogSinkOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSinkTo(&buf)

	for i := 0; i < 3; i++ {
		if err := s.Enqueue(New(TagVisit, "10.0.0.1")); err != nil {
			t.Fatal(err)
		}
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[visit] ") {
			t.Errorf("line = %q, want [visit] prefix", line)
		}
	}
}

func TestRecordOmitsEmptySections(t *testing.T) {
	rec := New(TagVisitStatus, "10.0.0.1")
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	_ = json.Unmarshal(b, &decoded)

	for _, key := range []string{"method", "path", "ua", "ua_parsed", "verdict", "code", "analysis", "extra"} {
		if _, ok := decoded[key]; ok {
			t.Errorf("empty field %q serialised", key)
		}
	}
	for _, key := range []string{"record_id", "timestamp", "ip"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("envelope field %q missing", key)
		}
	}
}
