package detect

import "testing"

func TestParseUA(t *testing.T) {
	t.Run("desktop chrome", func(t *testing.T) {
		info := ParseUA(chromeUA)
		if info == nil {
			t.Fatal("ParseUA returned nil for a real UA")
		}
		if info.Browser != "Chrome" {
			t.Errorf("browser = %q, want Chrome", info.Browser)
		}
		if info.Mobile {
			t.Error("desktop UA parsed as mobile")
		}
	})

	t.Run("googlebot", func(t *testing.T) {
		info := ParseUA("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		if info == nil || !info.Bot {
			t.Errorf("info = %+v, want bot", info)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if info := ParseUA(""); info != nil {
			t.Errorf("ParseUA(\"\") = %+v, want nil", info)
		}
	})
}
