// Package id formats and parses journal numbers.
//
// A journal number looks like "JV-2025-000042": fixed prefix, financial year,
// zero-padded sequence. Numbers are company-scoped and monotonic; the fixed
// width makes lexicographic order match assignment order within a financial
// year, which the ledger replay relies on as a same-day tie-break.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

const prefix = "JV"

// FormatJournalNumber returns a journal number like "JV-2025-000042".
func FormatJournalNumber(financialYear, seq int) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, financialYear, seq)
}

// ParseJournalNumber parses "JV-2025-000042" into financial year and sequence.
func ParseJournalNumber(number string) (financialYear, seq int, err error) {
	parts := strings.SplitN(number, "-", 3)
	if len(parts) != 3 || parts[0] != prefix {
		return 0, 0, fmt.Errorf("invalid journal number format: %q", number)
	}

	financialYear, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid financial year in journal number %q: %w", number, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid sequence in journal number %q: %w", number, err)
	}

	return financialYear, seq, nil
}
