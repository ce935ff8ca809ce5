package detect

import "strings"

// primaryLanguageTag reduces an Accept-Language value or a BCP 47 tag to
// its primary subtag: "en-US,en;q=0.9" and "en-GB" both become "en".
func primaryLanguageTag(v string) string {
	v = strings.TrimSpace(strings.Split(v, ",")[0])
	if i := strings.Index(v, ";"); i >= 0 {
		v = v[:i]
	}
	if i := strings.Index(v, "-"); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// consistencySignals cross-checks evidence that honest browsers keep in
// agreement: UA vs navigator, headers vs bundle, timezone vs offset.
func (e *bundleEval) consistencySignals() []Signal {
	nav := e.b.Section("navigator")
	navUA := e.b.Str("navigator", "userAgent")
	headerUA := e.h.Get("User-Agent")

	touchPoints := e.b.NumOr(0, "touch", "maxTouchPoints")

	headerLang := primaryLanguageTag(e.h.Get("Accept-Language"))
	navLang := primaryLanguageTag(e.b.Str("navigator", "language"))

	platform := strings.ToLower(e.b.Str("navigator", "platform"))
	platformMismatch := false
	if platform != "" {
		switch {
		case strings.Contains(e.lowerUA, "windows"):
			platformMismatch = !strings.Contains(platform, "win")
		case strings.Contains(e.lowerUA, "mac") && !e.mobile:
			platformMismatch = !strings.Contains(platform, "mac")
		case strings.Contains(e.lowerUA, "linux") && !e.mobile:
			platformMismatch = !strings.Contains(platform, "linux")
		}
	}

	tz := e.b.Str("timezone", "timezone")
	offset, okOffset := e.b.Num("timezone", "offset")
	tzInconsistent := okOffset &&
		((strings.HasPrefix(tz, "America/") && offset < 0) ||
			(strings.HasPrefix(tz, "Europe/") && offset > 60))

	hintPlatform := strings.ToLower(e.b.Str("userAgentData", "platform"))

	vendor := e.b.Str("navigator", "vendor")
	vendorMismatch := nav != nil &&
		((e.chrome && !strings.Contains(vendor, "Google")) ||
			(e.safari && !strings.Contains(vendor, "Apple")))

	return []Signal{
		signal("mobileNoTouch", CategoryConsistency, 15,
			e.mobile && touchPoints == 0,
			"Mobile UA without touch support",
			"Touch support consistent with mobile UA"),
		signal("desktopTouchMismatch", CategoryConsistency, 5,
			!e.mobile && touchPoints > 0 && e.b.Bool("touch", "touchEvent"),
			"Desktop UA with full touch support",
			"Touch support consistent with desktop UA"),
		signal("navigatorInconsistency", CategoryConsistency, 5,
			nav != nil && e.b.Str("navigator", "appName") == "Netscape" &&
				e.b.Str("navigator", "product") != "Gecko",
			"navigator.appName and navigator.product disagree",
			"navigator.appName and navigator.product agree"),
		signal("uaMismatch", CategoryConsistency, 20,
			headerUA != "" && navUA != "" && headerUA != navUA,
			"Header User-Agent differs from navigator.userAgent",
			"Header and navigator User-Agent agree"),
		signal("languageMismatch", CategoryConsistency, 10,
			headerLang != "" && navLang != "" && headerLang != navLang,
			"Accept-Language and navigator.language disagree",
			"Accept-Language and navigator.language agree"),
		signal("platformMismatch", CategoryConsistency, 15,
			platformMismatch,
			"User-Agent OS and navigator.platform disagree",
			"User-Agent OS and navigator.platform agree"),
		signal("timezoneInconsistent", CategoryConsistency, 10,
			tzInconsistent,
			"Timezone name and UTC offset disagree",
			"Timezone name and UTC offset agree"),
		signal("clientHintsMismatch", CategoryConsistency, 15,
			strings.Contains(platform, "win") && hintPlatform != "" &&
				!strings.Contains(hintPlatform, "win"),
			"navigator.platform and client hints disagree",
			"navigator.platform and client hints agree"),
		signal("vendorMismatch", CategoryConsistency, 10,
			vendorMismatch,
			"navigator.vendor inconsistent with UA",
			"navigator.vendor consistent with UA"),
		signal("productInconsistent", CategoryConsistency, 3,
			nav != nil && e.b.Str("navigator", "product") != "Gecko",
			"navigator.product is not Gecko",
			"navigator.product is Gecko"),
	}
}
