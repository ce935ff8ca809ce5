package detect

// featureSignals probes the long tail of browser APIs. Headless and
// emulated environments tend to lose several of these at once; each on its
// own is weak evidence, which the low weights reflect.
func (e *bundleEval) featureSignals() []Signal {
	f := e.features

	plugins := e.b.Count("plugins", "length")
	fonts := e.b.Count("fonts", "length")
	voices := e.b.Count("speechVoices", "count")
	languages := e.b.Count("navigator", "languages")

	media := e.b.Section("mediaDevices")
	mediaErr := e.b.Str("mediaDevices", "error")
	mediaTotal := e.b.NumOr(0, "mediaDevices", "audioinput") +
		e.b.NumOr(0, "mediaDevices", "audiooutput") +
		e.b.NumOr(0, "mediaDevices", "videoinput")

	_, hasHeapLimit := e.b.Num("performance", "jsHeapSizeLimit")

	return []Signal{
		signal("noPlugins", CategoryBrowserFeatures, 15,
			plugins <= 0,
			"No browser plugins reported",
			"Browser plugins present"),
		signal("noLanguages", CategoryBrowserFeatures, 15,
			languages <= 0,
			"navigator.languages empty",
			"navigator.languages populated"),
		signal("missingChrome", CategoryBrowserFeatures, 20,
			e.chrome && !f.Bool("windowChrome"),
			"Chrome UA without window.chrome",
			"window.chrome consistent with UA"),
		signal("noPermissionsAPI", CategoryBrowserFeatures, 10,
			!f.Bool("permissionsQuery"),
			"Permissions API unavailable",
			"Permissions API available"),
		signal("noNotifications", CategoryBrowserFeatures, 5,
			!f.Bool("notifications"),
			"Notification API unavailable",
			"Notification API available"),
		signal("noWebRTC", CategoryBrowserFeatures, 8,
			!f.Bool("webRTC"),
			"WebRTC unavailable",
			"WebRTC available"),
		signal("noIndexedDB", CategoryBrowserFeatures, 8,
			!f.Bool("indexedDB"),
			"IndexedDB unavailable",
			"IndexedDB available"),
		signal("noLocalStorage", CategoryBrowserFeatures, 10,
			!f.Bool("localStorage"),
			"localStorage unavailable",
			"localStorage available"),
		signal("noSessionStorage", CategoryBrowserFeatures, 10,
			!f.Bool("sessionStorage"),
			"sessionStorage unavailable",
			"sessionStorage available"),
		signal("noBattery", CategoryBrowserFeatures, 2,
			e.b.Str("battery", "error") != "",
			"Battery API errored",
			"Battery API readable"),
		signal("noMediaDevices", CategoryBrowserFeatures, 5,
			media == nil || mediaErr != "",
			"MediaDevices API unavailable",
			"MediaDevices API available"),
		signal("zeroMediaDevices", CategoryBrowserFeatures, 8,
			media != nil && mediaErr == "" && mediaTotal == 0,
			"MediaDevices enumerates no devices",
			"Media devices enumerated"),
		signal("noSpeechVoices", CategoryBrowserFeatures, 3,
			voices <= 0,
			"No speech synthesis voices",
			"Speech synthesis voices present"),
		signal("noConnectionAPI", CategoryBrowserFeatures, 5,
			e.chrome && !e.b.Has("connection"),
			"Chrome UA without the Network Information API",
			"Network Information API consistent with UA"),
		signal("noFonts", CategoryBrowserFeatures, 10,
			fonts <= 0,
			"No fonts detected",
			"Fonts detected"),
		signal("fewFonts", CategoryBrowserFeatures, 5,
			fonts >= 1 && fonts <= 4,
			"Implausibly small font set",
			"Font set of plausible size"),
		signal("noCanvasHash", CategoryBrowserFeatures, 8,
			e.b.Str("canvas", "hash") == "" || e.b.Str("canvas", "error") != "",
			"Canvas fingerprint unavailable",
			"Canvas fingerprint captured"),
		signal("audioError", CategoryBrowserFeatures, 5,
			e.b.Str("audio", "error") != "",
			"Audio context errored",
			"Audio context usable"),
		signal("noPerformanceMemory", CategoryBrowserFeatures, 5,
			e.chrome && !hasHeapLimit,
			"Chrome UA without performance.memory",
			"performance.memory consistent with UA"),
		signal("documentHidden", CategoryBrowserFeatures, 8,
			e.b.Bool("document", "hidden"),
			"Document hidden during collection",
			"Document visible during collection"),
		signal("noGamepadAPI", CategoryBrowserFeatures, 2,
			!e.b.Bool("gamepads", "supported"),
			"Gamepad API unavailable",
			"Gamepad API available"),
		signal("keyboardAPIError", CategoryBrowserFeatures, 5,
			e.b.Str("keyboard", "error") != "",
			"Keyboard layout API errored",
			"Keyboard layout API usable"),
		signal("noServiceWorker", CategoryBrowserFeatures, 3,
			!f.Bool("serviceWorker"),
			"ServiceWorker unavailable",
			"ServiceWorker available"),
		signal("noWebAssembly", CategoryBrowserFeatures, 5,
			!f.Bool("WebAssembly"),
			"WebAssembly unavailable",
			"WebAssembly available"),
		signal("noBluetooth", CategoryBrowserFeatures, 2,
			!f.Bool("bluetooth"),
			"Web Bluetooth unavailable",
			"Web Bluetooth available"),
		signal("noUSB", CategoryBrowserFeatures, 2,
			!f.Bool("usb"),
			"WebUSB unavailable",
			"WebUSB available"),
		signal("noCredentials", CategoryBrowserFeatures, 3,
			!f.Bool("credentials"),
			"Credentials API unavailable",
			"Credentials API available"),
	}
}
