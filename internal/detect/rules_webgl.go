package detect

import "strings"

// webglSignals inspects the reported renderer stack. Software rasterisers
// (SwiftShader, llvmpipe, Mesa) are the default in headless and virtualised
// environments.
func (e *bundleEval) webglSignals() []Signal {
	webgl := e.b.Section("webgl")
	webglErr := e.b.Str("webgl", "error")

	renderer := e.b.Str("webgl", "unmaskedRenderer")
	if renderer == "" {
		renderer = e.b.Str("webgl", "renderer")
	}
	vendor := e.b.Str("webgl", "unmaskedVendor")
	if vendor == "" {
		vendor = e.b.Str("webgl", "vendor")
	}
	lowerRenderer := strings.ToLower(renderer)
	lowerVendor := strings.ToLower(vendor)

	software := strings.Contains(lowerRenderer, "swiftshader") ||
		strings.Contains(lowerRenderer, "llvmpipe") ||
		strings.Contains(lowerRenderer, "mesa")

	extensions := e.b.Count("webgl", "extensions")

	webgl2Missing := e.b.Section("webgl2") == nil || e.b.Str("webgl2", "error") != ""

	return []Signal{
		signal("softwareRenderer", CategoryWebGL, 20,
			software,
			"WebGL renderer is a software rasteriser",
			"WebGL renderer is hardware-backed"),
		signal("noWebGLRenderer", CategoryWebGL, 10,
			webgl != nil && webglErr == "" && renderer == "",
			"WebGL present but reports no renderer",
			"WebGL renderer reported"),
		signal("softwareVendor", CategoryWebGL, 15,
			strings.Contains(lowerVendor, "brian paul") || strings.Contains(lowerVendor, "mesa"),
			"WebGL vendor is a software implementation",
			"WebGL vendor looks hardware-backed"),
		signal("noWebGLExtensions", CategoryWebGL, 8,
			webgl != nil && webglErr == "" && extensions <= 0,
			"WebGL reports no extensions",
			"WebGL extensions reported"),
		signal("noWebGL2", CategoryWebGL, 3,
			e.chrome && webgl2Missing,
			"Chrome UA without WebGL2",
			"WebGL2 consistent with UA"),
	}
}

// screenSignals checks display geometry for headless defaults.
func (e *bundleEval) screenSignals() []Signal {
	w, okW := e.b.Num("screen", "width")
	h, okH := e.b.Num("screen", "height")
	dpr, okDPR := e.b.Num("screen", "devicePixelRatio")
	depth, okDepth := e.b.Num("screen", "colorDepth")

	iw, okIW := e.b.Num("window", "innerWidth")
	ih, okIH := e.b.Num("window", "innerHeight")
	ow, okOW := e.b.Num("window", "outerWidth")
	oh, okOH := e.b.Num("window", "outerHeight")
	windowFull := okIW && okIH && okOW && okOH

	return []Signal{
		signal("zeroScreenSize", CategoryScreen, 15,
			okW && okH && (w == 0 || h == 0),
			"Screen reports zero size",
			"Screen size non-zero"),
		signal("defaultScreenSize", CategoryScreen, 10,
			okW && okH && w == 800 && h == 600,
			"Screen is the 800x600 headless default",
			"Screen size is not the headless default"),
		signal("noWindowChrome", CategoryScreen, 10,
			windowFull && iw == ow && iw > 0 && ih == oh,
			"Window has no browser chrome (inner equals outer)",
			"Window carries browser chrome"),
		signal("unusualDPR", CategoryScreen, 5,
			okDPR && (dpr < 0.5 || dpr > 4),
			"Device pixel ratio outside plausible range",
			"Device pixel ratio plausible"),
		signal("lowColorDepth", CategoryScreen, 5,
			okDepth && depth < 24,
			"Color depth below 24 bits",
			"Color depth plausible"),
	}
}
