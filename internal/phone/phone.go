// Package phone normalizes phone numbers for storage and expands search
// input into the prefix variants callers actually type.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize strips every non-digit character. The result is the canonical
// form stored in leads.normalized_phone; an empty input stays empty.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchVariants expands a user-typed phone query into the digit strings
// that may be stored for the same number. Operators search with or without
// the country code ("380631234567", "0631234567", "631234567"), so a match
// on any variant counts. Variants are digits-only and deduplicated; the
// normalized query itself is always first.
func SearchVariants(query string) []string {
	base := Normalize(query)
	if base == "" {
		return nil
	}

	seen := map[string]bool{base: true}
	variants := []string{base}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	// Local-format bridging for the primary market: numbers are stored as
	// 380XXXXXXXXX but typed as 0XXXXXXXXX and vice versa.
	if strings.HasPrefix(base, "380") {
		add("0" + base[3:])
		add(base[3:])
	} else if strings.HasPrefix(base, "0") && len(base) >= 10 {
		add("380" + base[1:])
		add("38" + base)
	}

	// Let libphonenumber resolve anything typed in international format.
	if parsed, err := phonenumbers.Parse("+"+base, ""); err == nil && phonenumbers.IsValidNumber(parsed) {
		add(Normalize(phonenumbers.Format(parsed, phonenumbers.E164)))
		add(Normalize(phonenumbers.Format(parsed, phonenumbers.NATIONAL)))
	}

	return variants
}
