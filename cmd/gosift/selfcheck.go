package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shortontech/gosift/internal/detect"
	"github.com/shortontech/gosift/internal/sink"
)

const cleanChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// runSelfcheck pushes three canned clients through the evaluators and
// reports mismatches. Exit code 0 means every canned case classified as
// expected; useful as a deploy smoke test.
func runSelfcheck() int {
	failures := 0

	// Verdicts also flow through the log sink so the record wiring is
	// exercised end to end.
	out := sink.NewLogSink()
	_ = out.Start(context.Background())
	defer func() { _ = out.Close() }()

	check := func(name, got, want string) {
		status := "ok"
		if got != want {
			status = "FAIL"
			failures++
		}
		fmt.Printf("selfcheck %-18s %-4s got=%s want=%s\n", name, status, got, want)
		rec := sink.New(sink.TagBotAnalysis, "selfcheck")
		rec.Verdict = got
		rec.Extra = map[string]any{"case": name, "expected": want}
		_ = out.Enqueue(rec)
	}

	// A bare curl request hitting an API path.
	curlHeaders := http.Header{}
	curlHeaders.Set("User-Agent", "curl/8.1.2")
	check("curl-headers", detect.EvaluateHeaders(curlHeaders).Verdict, detect.VerdictBot)

	// An analysis submission with no evidence at all.
	empty := detect.Bundle{}
	if detect.BundleIncomplete(empty) {
		check("empty-bundle", detect.EarlyReject().Verdict, detect.VerdictBot)
	} else {
		check("empty-bundle", "accepted", "rejected")
	}

	// Headless Chrome: webdriver set, software GL, headless defaults.
	headless := detect.Bundle{
		"screen":    map[string]any{"width": 800.0, "height": 600.0, "colorDepth": 24.0, "devicePixelRatio": 1.0},
		"window":    map[string]any{"innerWidth": 800.0, "innerHeight": 600.0, "outerWidth": 800.0, "outerHeight": 600.0},
		"navigator": map[string]any{"userAgent": "Mozilla/5.0 HeadlessChrome/126.0.0.0", "webdriver": true},
		"webgl":     map[string]any{"unmaskedRenderer": "Google SwiftShader"},
		"features":  map[string]any{"windowChrome": false},
		"jsChallenge": map[string]any{
			"valid": true, "solveTime": 12.0,
		},
	}
	check("headless-bundle", detect.EvaluateBundle(headless, http.Header{}).Verdict, detect.VerdictBot)

	// A fully populated desktop Chrome capture.
	cleanHeaders := http.Header{}
	cleanHeaders.Set("User-Agent", cleanChromeUA)
	cleanHeaders.Set("Accept", "application/json")
	cleanHeaders.Set("Accept-Language", "en-US,en;q=0.9")
	cleanHeaders.Set("Sec-Fetch-Dest", "empty")
	cleanHeaders.Set("Sec-Fetch-Mode", "cors")
	cleanHeaders.Set("Sec-Fetch-Site", "same-origin")
	cleanHeaders.Set("Sec-CH-UA", `"Chromium";v="126", "Google Chrome";v="126"`)
	cleanHeaders.Set("Connection", "keep-alive")
	cleanHeaders.Set("Cache-Control", "no-cache")
	check("clean-bundle", detect.EvaluateBundle(cleanDesktopBundle(), cleanHeaders).Verdict, detect.VerdictHuman)

	if failures > 0 {
		fmt.Printf("selfcheck: %d failure(s)\n", failures)
		return 1
	}
	fmt.Println("selfcheck: all checks passed")
	return 0
}

// cleanDesktopBundle is what an honest desktop Chrome on Windows reports.
func cleanDesktopBundle() detect.Bundle {
	return detect.Bundle{
		"screen": map[string]any{"width": 2560.0, "height": 1440.0, "colorDepth": 24.0, "devicePixelRatio": 1.0},
		"window": map[string]any{"innerWidth": 2488.0, "innerHeight": 1297.0, "outerWidth": 2560.0, "outerHeight": 1400.0},
		"navigator": map[string]any{
			"userAgent": cleanChromeUA,
			"language":  "en-US",
			"languages": []any{"en-US", "en"},
			"platform":  "Win32",
			"vendor":    "Google Inc.",
			"product":   "Gecko",
			"appName":   "Netscape",
			"webdriver": false,
		},
		"userAgentData": map[string]any{"platform": "Windows"},
		"timezone":      map[string]any{"timezone": "America/New_York", "offset": 300.0},
		"performance":   map[string]any{"navigationStart": 1000.0, "loadEventEnd": 2500.0, "jsHeapSizeLimit": 4294705152.0},
		"webgl": map[string]any{
			"unmaskedRenderer": "ANGLE (NVIDIA, NVIDIA GeForce RTX 3080 Direct3D11 vs_5_0 ps_5_0, D3D11)",
			"unmaskedVendor":   "Google Inc. (NVIDIA)",
			"renderer":         "WebKit WebGL",
			"vendor":           "WebKit",
			"extensions":       32.0,
		},
		"webgl2":       map[string]any{},
		"canvas":       map[string]any{"hash": "3f29ab0c"},
		"audio":        map[string]any{},
		"battery":      map[string]any{},
		"mediaDevices": map[string]any{"audioinput": 1.0, "audiooutput": 2.0, "videoinput": 1.0},
		"speechVoices": map[string]any{"count": 22.0},
		"plugins":      map[string]any{"length": 5.0},
		"fonts":        map[string]any{"length": 41.0},
		"touch":        map[string]any{"maxTouchPoints": 0.0, "touchEvent": false},
		"gamepads":     map[string]any{"supported": true},
		"keyboard":     map[string]any{},
		"document":     map[string]any{"hidden": false},
		"math":         map[string]any{"acos": 1.0471975511965979},
		"connection":   map[string]any{},
		"features": map[string]any{
			"webdriver":        false,
			"phantom":          false,
			"nightmare":        false,
			"selenium":         false,
			"domAutomation":    false,
			"windowChrome":     true,
			"permissionsQuery": true,
			"pluginsLength":    true,
			"notifications":    true,
			"webRTC":           true,
			"indexedDB":        true,
			"localStorage":     true,
			"sessionStorage":   true,
			"serviceWorker":    true,
			"WebAssembly":      true,
			"bluetooth":        true,
			"usb":              true,
			"credentials":      true,
		},
		"jsChallenge": map[string]any{"valid": true, "solveTime": 45.0},
	}
}
