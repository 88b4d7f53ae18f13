package main

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd, "rootCmd should be defined")
	assert.Equal(t, "ledgerlens", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "statement")
}

func TestFiltersCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"filters", "expenses over $100"})

	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), `"amount_min": 100`)
	assert.Contains(t, out.String(), `"transaction_type": "Debit"`)
	assert.NotContains(t, out.String(), `"amount_max"`)
}

func TestGenerateCommand_Deterministic(t *testing.T) {
	run := func() string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"generate", "--seed", "7", "--count", "10",
			"--start", "2024-01-01", "--end", "2024-01-31"})
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "same seed must produce the same statement")

	records, err := csv.NewReader(strings.NewReader(first)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, records[0])
	assert.Greater(t, len(records), 10, "merchant rows plus salary credits")
}

func TestGenerateCommand_BadDialect(t *testing.T) {
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"generate", "--dialect", "ofx"})

	assert.Error(t, rootCmd.Execute())
}
