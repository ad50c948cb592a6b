package parsers_test

import (
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/statement/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindStatementPeriod(t *testing.T) {
	period, ok := parsers.FindStatementPeriod("EXTRACTO\nDesde 01/12/2024 hasta 31/01/2025\n")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), period.End)

	_, ok = parsers.FindStatementPeriod("no period here")
	assert.False(t, ok)
}

func TestStatementPeriod_YearFor(t *testing.T) {
	spanning := parsers.StatementPeriod{
		Start: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2024, spanning.YearFor(time.November))
	assert.Equal(t, 2024, spanning.YearFor(time.December))
	assert.Equal(t, 2025, spanning.YearFor(time.January))
	assert.Equal(t, 2025, spanning.YearFor(time.February))

	single := parsers.StatementPeriod{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2025, single.YearFor(time.January))
}
