package detect

import (
	"fmt"
	"net/http"
	"strings"
)

// botPatterns are HTTP client and automation suite identifiers, matched
// case-insensitively as substrings of the User-Agent. Order matters: the
// first match is reported in the signal reason.
var botPatterns = []string{
	"python", "curl", "wget", "axios", "node-fetch", "go-http", "java/",
	"libwww", "httpunit", "nutch", "phpcrawl", "msnbot", "scrapy",
	"mechanize", "phantom", "casper", "selenium", "webdriver",
	"chrome-lighthouse", "pingdom", "phantomjs", "headlesschrome",
	"httpie", "postman", "insomnia", "rest-client", "okhttp", "apache-http",
}

// crawlerPatterns are site-mirroring and indexing suites that rarely bother
// masquerading as browsers; checked after botPatterns.
var crawlerPatterns = []string{
	"heritrix", "httrack", "teoma", "gigablast", "ia_archiver", "ezooms",
	"linkdex", "exabot", "psbot", "seekbot", "omgilibot", "grub-client",
}

// matchBotPattern returns the first matching identifier.
func matchBotPattern(ua string) (string, bool) {
	lower := strings.ToLower(ua)
	for _, p := range botPatterns {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	for _, p := range crawlerPatterns {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// EvaluateHeaders scores request headers alone. This is the lightweight
// triage applied to non-document traffic that never submits a bundle, e.g.
// curl poking an API route directly.
func EvaluateHeaders(h http.Header) Verdict {
	ua := h.Get("User-Agent")
	accept := h.Get("Accept")
	pattern, uaIsBot := matchBotPattern(ua)

	noSecFetch := h.Get("Sec-Fetch-Dest") == "" &&
		h.Get("Sec-Fetch-Mode") == "" &&
		h.Get("Sec-Fetch-Site") == ""

	all := []Signal{
		signal("noUserAgent", CategoryHeaders, 30,
			ua == "",
			"No User-Agent header",
			"User-Agent header present"),
		signal("shortUserAgent", CategoryHeaders, 15,
			ua != "" && len(ua) < 20,
			fmt.Sprintf("User-Agent suspiciously short (%d chars)", len(ua)),
			"User-Agent has plausible length"),
		signal("botUserAgent", CategoryHeaders, 30,
			uaIsBot,
			fmt.Sprintf("User-Agent matches bot pattern %q", pattern),
			"User-Agent matches no known bot pattern"),
		signal("headlessUA", CategoryHeaders, 25,
			strings.Contains(strings.ToLower(ua), "headless"),
			"User-Agent declares a headless browser",
			"User-Agent does not declare headless"),
		signal("noAcceptHeader", CategoryHeaders, 10,
			accept == "",
			"No Accept header",
			"Accept header present"),
		signal("nonBrowserAccept", CategoryHeaders, 10,
			accept != "" && !strings.Contains(accept, "text/html") && !strings.Contains(accept, "*/*"),
			"Accept header lacks browser content types",
			"Accept header looks like a browser's"),
		signal("noAcceptLanguage", CategoryHeaders, 15,
			h.Get("Accept-Language") == "",
			"No Accept-Language header",
			"Accept-Language header present"),
		signal("noAcceptEncoding", CategoryHeaders, 10,
			h.Get("Accept-Encoding") == "",
			"No Accept-Encoding header",
			"Accept-Encoding header present"),
		signal("noSecFetch", CategoryHeaders, 15,
			noSecFetch,
			"No Sec-Fetch-* headers",
			"Sec-Fetch-* headers present"),
		signal("noSecChUa", CategoryHeaders, 8,
			h.Get("Sec-CH-UA") == "",
			"No Sec-CH-UA header",
			"Sec-CH-UA header present"),
		signal("noConnection", CategoryHeaders, 5,
			h.Get("Connection") == "",
			"No Connection header",
			"Connection header present"),
		signal("noUpgradeInsecure", CategoryHeaders, 5,
			h.Get("Upgrade-Insecure-Requests") == "",
			"No Upgrade-Insecure-Requests header",
			"Upgrade-Insecure-Requests header present"),
	}
	return assemble(all)
}
