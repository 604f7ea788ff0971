package order

import (
	"crypto/rand"
	"regexp"
	"time"
)

const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var numberRegex = regexp.MustCompile(`^ORD-\d{8}-[A-Z2-9]{6}$`)

// NewNumber generates an order number of the form ORD-YYYYMMDD-XXXXXX
func NewNumber(at time.Time) string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	suffix := make([]byte, 6)
	for i, v := range b {
		suffix[i] = numberAlphabet[int(v)%len(numberAlphabet)]
	}
	return "ORD-" + at.UTC().Format("20060102") + "-" + string(suffix)
}

// IsValidNumber reports whether s looks like an order number
func IsValidNumber(s string) bool {
	return numberRegex.MatchString(s)
}
