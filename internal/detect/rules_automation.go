package detect

import "strings"

// automationSignals covers the hard automation markers plus the two
// structural checks: a bundle with no browser data at all, and a missing or
// failed JS challenge.
func (e *bundleEval) automationSignals() []Signal {
	webdriver := e.b.Bool("navigator", "webdriver") || e.features.Bool("webdriver")
	challengeOK := e.b.Bool("jsChallenge", "valid")

	return []Signal{
		signal("webdriver", CategoryAutomation, 30,
			webdriver,
			"navigator.webdriver is set",
			"navigator.webdriver not set"),
		signal("phantom", CategoryAutomation, 30,
			e.features.Bool("phantom"),
			"PhantomJS environment markers present",
			"No PhantomJS markers"),
		signal("nightmare", CategoryAutomation, 30,
			e.features.Bool("nightmare"),
			"Nightmare environment markers present",
			"No Nightmare markers"),
		signal("selenium", CategoryAutomation, 30,
			e.features.Bool("selenium"),
			"Selenium environment markers present",
			"No Selenium markers"),
		signal("domAutomation", CategoryAutomation, 30,
			e.features.Bool("domAutomation"),
			"domAutomation controller present",
			"No domAutomation controller"),
		signal("headlessUA", CategoryAutomation, 25,
			strings.Contains(e.lowerUA, "headless"),
			"User-Agent declares a headless browser",
			"User-Agent does not declare headless"),
		signal("noBrowserData", CategoryAutomation, 50,
			!e.hasBrowserData,
			"Bundle carries no screen, window or navigator data",
			"Browser environment data present"),
		signal("jsChallengeFailed", CategoryAutomation, 35,
			!challengeOK,
			"JS challenge missing or failed",
			"JS challenge solved"),
	}
}

// essentialDataSignals fires only when some browser data exists; a bundle
// with none already took the full noBrowserData hit.
func (e *bundleEval) essentialDataSignals() []Signal {
	has := e.hasBrowserData
	return []Signal{
		signal("noScreenData", CategoryGeneral, 25,
			has && e.b.Section("screen") == nil,
			"No screen data in bundle",
			"Screen data present"),
		signal("noWindowData", CategoryGeneral, 20,
			has && e.b.Section("window") == nil,
			"No window data in bundle",
			"Window data present"),
		signal("noNavigatorData", CategoryGeneral, 25,
			has && e.b.Section("navigator") == nil,
			"No navigator data in bundle",
			"Navigator data present"),
		signal("noTimezoneData", CategoryGeneral, 15,
			has && e.b.Section("timezone") == nil,
			"No timezone data in bundle",
			"Timezone data present"),
	}
}
