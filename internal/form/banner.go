package form

import (
	"time"

	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

// DefaultBannerTTL is how long a success banner stays visible.
const DefaultBannerTTL = 4 * time.Second

// Banner is the message strip above a list or form. Success banners clear
// themselves after their TTL; error banners stay until dismissed.
type Banner struct {
	Text      string
	Error     bool
	expiresAt time.Time
	dismissed bool
}

// SuccessBanner shows text until now+ttl.
func SuccessBanner(text string, now time.Time, ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &Banner{Text: text, expiresAt: now.Add(ttl)}
}

// ErrorBanner shows the operator-facing text of err, or fallback.
func ErrorBanner(err error, fallback string) *Banner {
	return &Banner{Text: appErrors.Banner(err, fallback), Error: true}
}

// Visible reports whether the banner should still be shown at now.
func (b *Banner) Visible(now time.Time) bool {
	if b == nil || b.dismissed || b.Text == "" {
		return false
	}
	if b.Error {
		return true
	}
	return now.Before(b.expiresAt)
}

// Dismiss hides the banner.
func (b *Banner) Dismiss() {
	if b != nil {
		b.dismissed = true
	}
}
