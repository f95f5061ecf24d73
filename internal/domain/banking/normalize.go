package banking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Bank CSV exports disagree on date and amount formats. Everything that
// feeds the duplicate detection goes through the normalizers here so the
// same booking always produces the same fingerprint.

var (
	dateDotted  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`) // 31.12.2026
	dateISO     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)   // 2026-12-31
	dateSlashed = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)   // 31/12/2026
	dateDashed  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)   // 31-12-2026

	amountNoise = regexp.MustCompile(`[\s€$£¥,]`)
	parenNeg    = regexp.MustCompile(`^\((.+)\)$`)
	dotGrouped  = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`) // 1.234.567
)

// ParseDate parses a booking date in any of the supported CSV formats:
// DD.MM.YYYY, YYYY-MM-DD, DD/MM/YYYY and DD-MM-YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date cannot be empty")
	}

	var year, month, day string
	switch {
	case dateDotted.MatchString(s):
		m := dateDotted.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	case dateISO.MatchString(s):
		m := dateISO.FindStringSubmatch(s)
		year, month, day = m[1], m[2], m[3]
	case dateSlashed.MatchString(s):
		m := dateSlashed.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	case dateDashed.MatchString(s):
		m := dateDashed.FindStringSubmatch(s)
		day, month, year = m[1], m[2], m[3]
	default:
		return time.Time{}, shared.NewDomainError("INVALID_DATE", fmt.Sprintf("Unsupported date format: %q", s))
	}

	t, err := time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", year, month, day))
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", fmt.Sprintf("Invalid date: %q", s))
	}
	return t, nil
}

// NormalizeDate renders a raw date string in ISO form (YYYY-MM-DD).
// Unparseable input is returned trimmed, so hashing stays deterministic
// even for malformed rows.
func NormalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return t.Format("2006-01-02")
}

// ParseAmount parses a monetary amount in German (1.234,56), English
// (1,234.56) or bare (1234.56) notation. Currency symbols and whitespace
// are ignored; parentheses mark a negative amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be empty")
	}

	if m := parenNeg.FindStringSubmatch(s); m != nil {
		inner, err := ParseAmount(m[1])
		if err != nil {
			return decimal.Zero, err
		}
		return inner.Neg(), nil
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '€', '$', '£', '¥', ' ', '\t', ' ':
			return -1
		}
		return r
	}, s)

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// German notation: dots group thousands, comma is decimal
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// English notation: commas group thousands
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0 && dotGrouped.MatchString(cleaned):
		// German thousands grouping without a decimal comma: 1.234.567
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case lastComma >= 0:
		// Comma only: decimal comma when it has at most two trailing
		// digits, otherwise a thousands separator
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Unparseable amount: %q", s))
	}
	return d, nil
}

// RowHash fingerprints one CSV row as the first 16 hex characters of
// SHA-256 over normalizedDate|normalizedAmount|trimmedDescription. The
// amount is parsed into its canonical decimal form first, so "-89,99"
// and "-89.99" yield the same fingerprint. Rows the amount parser
// rejects fall back to the textual form with whitespace, currency
// symbols and commas stripped.
func RowHash(rawDate, rawAmount, description string) string {
	amountKey := amountNoise.ReplaceAllString(rawAmount, "")
	if amount, err := ParseAmount(rawAmount); err == nil {
		amountKey = amount.String()
	}

	normalized := fmt.Sprintf("%s|%s|%s",
		NormalizeDate(rawDate),
		amountKey,
		strings.TrimSpace(description),
	)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
