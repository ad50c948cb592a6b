package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SignatureDateLayout is the date part of a dedup signature.
const SignatureDateLayout = "2006-01-02"

// signatureHashLength is the number of hex characters of the description hash kept in a signature.
// Collisions between different descriptions on the same date and amount are accepted.
const signatureHashLength = 8

// Signature builds the dedup key "date|amount|hash" shared by drafts and persisted transactions.
func Signature(date time.Time, amount decimal.Decimal, description string) string {
	sum := md5.Sum([]byte(NormalizeDescription(description)))
	hash := hex.EncodeToString(sum[:])[:signatureHashLength]
	return date.Format(SignatureDateLayout) + "|" + amount.StringFixed(2) + "|" + hash
}

// NormalizeDescription trims, collapses inner whitespace and lower-cases a description.
func NormalizeDescription(description string) string {
	return strings.ToLower(strings.Join(strings.Fields(description), " "))
}
