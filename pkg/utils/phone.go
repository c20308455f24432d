package utils

import "strings"

// NormalizePhone returns the wire format the Graph API expects in the
// `to` field: bare E.164 digits, no leading plus. This is the single
// normalization point; "15551234567" and "+15551234567" collapse to the
// same value.
func NormalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
