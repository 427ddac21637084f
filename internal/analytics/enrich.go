package analytics

import (
	"net/url"
	"strings"
)

// Device classes reported in the device breakdown.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// SourceDirect and SourceReferral are used when the event names no source.
const (
	SourceDirect   = "direct"
	SourceReferral = "referral"
)

var spamReferrers = []string{
	"semalt.com",
	"buttons-for-website.com",
	"darodar.com",
	"best-seo-offer.com",
	"free-share-buttons.com",
	"blackhatworth.com",
	"hulfingtonpost.com",
	"o-o-6-o-o.com",
	"priceg.com",
	"make-money-online",
	"simple-share-buttons.com",
	"kambasoft.com",
}

// DeviceClass buckets a User-Agent header into desktop, mobile or tablet.
func DeviceClass(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet") || strings.Contains(ua, "kindle"):
		return DeviceTablet
	// Android tablets omit "mobile" from their UA.
	case strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return DeviceTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// ReferrerDomain extracts the lowercase host of a referrer URL without "www.".
// Unparseable, local and spam referrers yield "".
func ReferrerDomain(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return ""
	}
	if !strings.Contains(referrer, "://") {
		referrer = "https://" + referrer
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if domain == "" || domain == "localhost" || domain == "127.0.0.1" {
		return ""
	}
	if isSpamReferrer(domain) {
		return ""
	}
	return domain
}

func isSpamReferrer(domain string) bool {
	for _, spam := range spamReferrers {
		if strings.Contains(domain, spam) {
			return true
		}
	}
	return false
}

// TrafficSource picks the explicit source, falling back to referral when a
// referrer is known and direct otherwise.
func TrafficSource(explicit, referrerDomain string) string {
	if source := strings.ToLower(strings.TrimSpace(explicit)); source != "" {
		return source
	}
	if referrerDomain != "" {
		return SourceReferral
	}
	return SourceDirect
}
