package detect

import "math"

// The exact value of Math.acos(0.5) in a conforming JS engine; fingerprint
// spoofing layers that patch Math tend to break it.
const acosHalf = 1.0471975511965979

func (e *bundleEval) timingSignals() []Signal {
	solveTime := e.b.NumOr(0, "jsChallenge", "solveTime")
	challengeOK := e.b.Bool("jsChallenge", "valid")

	navStart, okStart := e.b.Num("performance", "navigationStart")
	loadEnd, okEnd := e.b.Num("performance", "loadEventEnd")
	loadTime := loadEnd - navStart

	return []Signal{
		signal("jsChallengeTimingSuspicious", CategoryTiming, 10,
			challengeOK && solveTime > 30000,
			"JS challenge solved implausibly late",
			"JS challenge solve time plausible"),
		signal("negativeLoadTime", CategoryTiming, 20,
			okStart && okEnd && loadTime < 0,
			"Page load time is negative",
			"Page load time non-negative"),
		signal("zeroLoadTime", CategoryTiming, 15,
			okStart && okEnd && loadTime == 0,
			"Page load time is exactly zero",
			"Page load time non-zero"),
	}
}

func (e *bundleEval) fingerprintSignals() []Signal {
	acos, okAcos := e.b.Num("math", "acos")
	return []Signal{
		signal("mathInconsistent", CategoryFingerprint, 10,
			okAcos && math.Abs(acos-acosHalf) > 1e-7,
			"Math.acos deviates from the IEEE 754 result",
			"Math.acos matches the expected result"),
	}
}

// headerSignals re-checks a subset of the header rules on the analysis
// path. Weights here differ from the triage evaluator on purpose: a request
// that made it this far already executed some JS, so missing headers are
// weaker evidence.
func (e *bundleEval) headerSignals() []Signal {
	ua := e.h.Get("User-Agent")
	if ua == "" {
		ua = e.ua
	}
	pattern, uaIsBot := matchBotPattern(ua)

	noSecFetch := e.h.Get("Sec-Fetch-Dest") == "" &&
		e.h.Get("Sec-Fetch-Mode") == "" &&
		e.h.Get("Sec-Fetch-Site") == ""

	return []Signal{
		signal("noAcceptLanguage", CategoryHeaders, 10,
			e.h.Get("Accept-Language") == "",
			"No Accept-Language header",
			"Accept-Language header present"),
		signal("noAcceptHeader", CategoryHeaders, 5,
			e.h.Get("Accept") == "",
			"No Accept header",
			"Accept header present"),
		signal("botUserAgent", CategoryHeaders, 25,
			uaIsBot,
			"User-Agent matches bot pattern \""+pattern+"\"",
			"User-Agent matches no known bot pattern"),
		signal("shortUserAgent", CategoryHeaders, 15,
			ua != "" && len(ua) < 20,
			"User-Agent suspiciously short",
			"User-Agent has plausible length"),
		signal("noSecFetch", CategoryHeaders, 8,
			noSecFetch,
			"No Sec-Fetch-* headers",
			"Sec-Fetch-* headers present"),
		signal("noSecChUa", CategoryHeaders, 8,
			e.chrome && e.h.Get("Sec-CH-UA") == "",
			"Chrome UA without Sec-CH-UA header",
			"Sec-CH-UA consistent with UA"),
		signal("noConnectionHeader", CategoryHeaders, 3,
			e.h.Get("Connection") == "",
			"No Connection header",
			"Connection header present"),
		signal("noCacheControl", CategoryHeaders, 2,
			e.h.Get("Cache-Control") == "",
			"No Cache-Control header",
			"Cache-Control header present"),
	}
}
