package views_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/views"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	base := domain.VisitorSignal{IP: "203.0.113.7", UserAgent: "Mozilla/5.0", Referrer: "https://news.example/"}

	assert.Len(t, views.Fingerprint(base), 64)
	assert.Equal(t, views.Fingerprint(base), views.Fingerprint(domain.VisitorSignal{
		IP: " 203.0.113.7 ", UserAgent: "MOZILLA/5.0", Referrer: "https://news.example/",
	}))

	otherIP := base
	otherIP.IP = "203.0.113.8"
	assert.NotEqual(t, views.Fingerprint(base), views.Fingerprint(otherIP))

	otherRef := base
	otherRef.Referrer = ""
	assert.NotEqual(t, views.Fingerprint(base), views.Fingerprint(otherRef))

	// Field boundaries are delimited.
	assert.NotEqual(t,
		views.Fingerprint(domain.VisitorSignal{IP: "ab", UserAgent: "c"}),
		views.Fingerprint(domain.VisitorSignal{IP: "a", UserAgent: "bc"}),
	)

	assert.Equal(t, views.Fingerprint(domain.VisitorSignal{}), views.Fingerprint(domain.VisitorSignal{IP: "  "}))
}
