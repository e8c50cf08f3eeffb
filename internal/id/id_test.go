package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJournalNumber(t *testing.T) {
	assert.Equal(t, "JV-2025-000042", FormatJournalNumber(2025, 42))
	assert.Equal(t, "JV-2025-000001", FormatJournalNumber(2025, 1))
}

func TestParseJournalNumber(t *testing.T) {
	year, seq, err := ParseJournalNumber("JV-2025-000042")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 42, seq)
}

func TestRoundTrip(t *testing.T) {
	year, seq, err := ParseJournalNumber(FormatJournalNumber(2024, 999999))
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 999999, seq)
}

func TestParseJournalNumber_Invalid(t *testing.T) {
	for _, bad := range []string{"", "JV-2025", "XX-2025-000001", "JV-abcd-000001", "JV-2025-xyz"} {
		_, _, err := ParseJournalNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestLexicographicOrderWithinYear(t *testing.T) {
	assert.Less(t, FormatJournalNumber(2025, 9), FormatJournalNumber(2025, 10))
	assert.Less(t, FormatJournalNumber(2025, 99999), FormatJournalNumber(2025, 100000))
}
