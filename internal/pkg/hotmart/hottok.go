package hotmart

import (
	"crypto/subtle"
	"strings"
)

// HottokHeader is the header Hotmart sends with every webhook delivery.
const HottokHeader = "X-Hotmart-Hottok"

// VerifyHottok checks the delivery token against the configured secret in
// constant time. Both sides empty counts as invalid; webhooks without a
// configured secret are accepted only on the mock endpoint.
func VerifyHottok(headerValue, configured string) bool {
	h := strings.TrimSpace(headerValue)
	c := strings.TrimSpace(configured)
	if h == "" || c == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(h), []byte(c)) == 1
}
