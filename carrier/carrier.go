// Package carrier maps free-form carrier names to canonical codes and
// tracking URLs. The table is static configuration; unknown carriers fold
// into the "other" code, which is not an error.
package carrier

import (
	"net/url"
	"strings"
	"unicode"
)

// CodeOther is the canonical code for unknown and custom carriers.
const CodeOther = "other"

// Normalized is the result of normalizing a raw carrier identifier.
type Normalized struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

// Input carries everything normalization needs. ExplicitURL, when set, wins
// over any generated URL.
type Input struct {
	Raw            string
	CustomName     string
	ExplicitURL    string
	TrackingNumber string
}

// codes maps lowercase raw identifiers to canonical codes. Both the
// hyphenated form used by the platform UI and the bare canonical form are
// accepted.
var codes = map[string]string{
	"dhl":            "dhl",
	"ups":            "ups",
	"fedex":          "fedex",
	"usps":           "usps",
	"canada-post":    "canadaPost",
	"canadapost":     "canadaPost",
	"royal-mail":     "royalMail",
	"royalmail":      "royalMail",
	"australia-post": "australiaPost",
	"australiapost":  "australiaPost",
	"deutsche-post":  "deutschePost",
	"deutschepost":   "deutschePost",
	"la-poste":       "laPoste",
	"laposte":        "laPoste",
	"japan-post":     "japanPost",
	"japanpost":      "japanPost",
	"china-post":     "chinaPost",
	"chinapost":      "chinaPost",
	"tnt":            "tnt",
	"aramex":         "aramex",
	"other":          CodeOther,
	"custom":         CodeOther,
}

// displayNames maps canonical codes to merchant-facing names. Codes missing
// here fall back to a title-cased form of the code.
var displayNames = map[string]string{
	"dhl":           "DHL",
	"ups":           "UPS",
	"fedex":         "FedEx",
	"usps":          "USPS",
	"canadaPost":    "Canada Post",
	"royalMail":     "Royal Mail",
	"australiaPost": "Australia Post",
	"deutschePost":  "Deutsche Post",
	"laPoste":       "La Poste",
	"japanPost":     "Japan Post",
	"chinaPost":     "China Post",
	"tnt":           "TNT",
	"aramex":        "Aramex",
	CodeOther:       "Other",
}

// urlTemplates maps canonical codes to tracking URL templates with a
// {trackingNumber} substitution point. "other" deliberately has none.
var urlTemplates = map[string]string{
	"dhl":           "https://www.dhl.com/global-en/home/tracking.html?tracking-id={trackingNumber}",
	"ups":           "https://www.ups.com/track?tracknum={trackingNumber}",
	"fedex":         "https://www.fedex.com/fedextrack/?trknbr={trackingNumber}",
	"usps":          "https://tools.usps.com/go/TrackConfirmAction?tLabels={trackingNumber}",
	"canadaPost":    "https://www.canadapost-postescanada.ca/track-reperage/en#/search?searchFor={trackingNumber}",
	"royalMail":     "https://www.royalmail.com/track-your-item#/tracking-results/{trackingNumber}",
	"australiaPost": "https://auspost.com.au/mypost/track/#/details/{trackingNumber}",
	"deutschePost":  "https://www.deutschepost.de/en/s/sendungsverfolgung.html?piececode={trackingNumber}",
	"laPoste":       "https://www.laposte.fr/outils/suivre-vos-envois?code={trackingNumber}",
	"japanPost":     "https://trackings.post.japanpost.jp/services/srv/search/direct?reqCodeNo1={trackingNumber}&locale=en",
	"chinaPost":     "https://track.chinapost.com/index.php?tracknumber={trackingNumber}",
	"tnt":           "https://www.tnt.com/express/en_us/site/tracking.html?searchType=con&cons={trackingNumber}",
	"aramex":        "https://www.aramex.com/track/results?ShipmentNumber={trackingNumber}",
}

// Normalize resolves a raw carrier identifier to its canonical code, display
// name and tracking URL. It has no failure mode: absence of a mapping means
// the "other" code.
func Normalize(in Input) Normalized {
	code, ok := codes[strings.ToLower(strings.TrimSpace(in.Raw))]
	if !ok {
		code = CodeOther
	}

	display := displayNames[code]
	if display == "" {
		display = titleCase(code)
	}
	if code == CodeOther && strings.TrimSpace(in.CustomName) != "" {
		display = strings.TrimSpace(in.CustomName)
	}

	out := Normalized{Code: code, DisplayName: display}

	if explicit := strings.TrimSpace(in.ExplicitURL); explicit != "" {
		out.TrackingURL = explicit
		return out
	}
	if template, ok := urlTemplates[code]; ok && in.TrackingNumber != "" {
		out.TrackingURL = strings.ReplaceAll(template, "{trackingNumber}", url.QueryEscape(in.TrackingNumber))
	}
	return out
}

// titleCase renders a camelCase canonical code as spaced title case,
// e.g. "canadaPost" -> "Canada Post".
func titleCase(code string) string {
	var b strings.Builder
	for i, r := range code {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
