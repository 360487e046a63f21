// Package views counts report views with per-visitor deduplication.
package views

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

// Fingerprint derives a stable visitor key from a signal. An all-empty
// signal yields the anonymous bucket.
func Fingerprint(signal domain.VisitorSignal) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(signal.IP)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(signal.UserAgent))))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(signal.Referrer)))
	return hex.EncodeToString(h.Sum(nil))
}
