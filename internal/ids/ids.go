// Package ids generates the human-readable reference codes used across the
// back office (clients, visa applications, invoices). The functions are pure:
// existing-code lookups are injected, so the same inputs always produce the
// same candidate sequence.
package ids

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

// ExistsFunc reports whether a candidate code is already taken.
type ExistsFunc func(code string) (bool, error)

// ErrSuffixExhausted is returned when no free collision suffix remains.
// With two-digit suffixes this means 100 codes share a base, which points at
// a data problem rather than normal volume.
var ErrSuffixExhausted = errors.New("ids: suffix space exhausted")

const maxSuffix = 99

// checkDigits is the fixed tail appended after the date segment.
const checkDigits = "99"

// visaTypeCodes maps a visa type to its single-letter code used in
// application and invoice references.
var visaTypeCodes = map[string]string{
	"schengen": "S",
	"us":       "U",
	"uk":       "K",
	"au":       "A",
	"nz":       "N",
}

// VisaTypeCode returns the letter code for a visa type. Unknown types fall
// back to their uppercased first letter so a new type never produces an
// empty reference.
func VisaTypeCode(visaType string) string {
	if c, ok := visaTypeCodes[strings.ToLower(strings.TrimSpace(visaType))]; ok {
		return c
	}
	vt := strings.TrimSpace(visaType)
	if vt == "" {
		return ""
	}
	return strings.ToUpper(vt[:1])
}

// Initials builds the two-letter name part: first letter of the first name
// followed by first letter of the last name, uppercased.
func Initials(firstName, lastName string) string {
	return firstLetter(firstName) + firstLetter(lastName)
}

func firstLetter(s string) string {
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return ""
}

// datePart renders a reference date as YYMMDD plus the fixed check digits,
// e.g. 2025-12-30 -> "25123099".
func datePart(t time.Time) string {
	return t.Format("060102") + checkDigits
}

// ClientID generates a client reference such as "RA25123099". On collision
// a two-digit counter is appended: "RA2512309901".
func ClientID(firstName, lastName string, refDate time.Time, exists ExistsFunc) (string, error) {
	base := Initials(firstName, lastName) + datePart(refDate)
	return uniquify(base, "", exists)
}

// ApplicationID generates an application reference: the visa-type letter code
// in front of the client reference scheme, e.g. "SRA25123099".
func ApplicationID(visaType, firstName, lastName string, refDate time.Time, exists ExistsFunc) (string, error) {
	base := VisaTypeCode(visaType) + Initials(firstName, lastName) + datePart(refDate)
	return uniquify(base, "", exists)
}

// InvoiceID generates an invoice reference from the visa-type codes of every
// attached application, the client initials, the invoice date and the due
// date, e.g. "USRA-25123099-1231". Collisions append "-01", "-02", ...
//
// The visa-type set is deduplicated and ordered reverse-alphabetically by
// code so the result does not depend on attachment order.
func InvoiceID(visaTypes []string, firstName, lastName string, invoiceDate, dueDate time.Time, exists ExistsFunc) (string, error) {
	base := invoiceBase(visaTypes, firstName, lastName, invoiceDate, dueDate)
	return uniquify(base, "-", exists)
}

// InvoiceBase returns the deterministic part of an invoice reference without
// resolving collisions. Callers use it to detect whether a stored reference
// still matches the current application set.
func InvoiceBase(visaTypes []string, firstName, lastName string, invoiceDate, dueDate time.Time) string {
	return invoiceBase(visaTypes, firstName, lastName, invoiceDate, dueDate)
}

func invoiceBase(visaTypes []string, firstName, lastName string, invoiceDate, dueDate time.Time) string {
	seen := map[string]bool{}
	codes := make([]string, 0, len(visaTypes))
	for _, vt := range visaTypes {
		c := VisaTypeCode(vt)
		if c != "" && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(codes)))
	return strings.Join(codes, "") + Initials(firstName, lastName) +
		"-" + datePart(invoiceDate) +
		"-" + dueDate.Format("0102")
}

// uniquify returns base if free, otherwise base plus the lowest free
// two-digit suffix (joined with sep). Suffixes are tried in ascending order
// so the first free one always wins.
func uniquify(base, sep string, exists ExistsFunc) (string, error) {
	taken, err := exists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; n <= maxSuffix; n++ {
		candidate := base + sep + fmt.Sprintf("%02d", n)
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSuffixExhausted
}
