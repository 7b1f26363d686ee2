package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		raw      string
		expected Severity
		wantErr  bool
	}{
		{"critical", SevCritical, false},
		{" HIGH ", SevHigh, false},
		{"Medium", SevMedium, false},
		{"low", SevLow, false},
		{"info", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSeverity(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSeverityOrder(t *testing.T) {
	for i := 1; i < len(Severities); i++ {
		assert.Less(t, Severities[i-1].Rank(), Severities[i].Rank())
	}
	assert.True(t, SevCritical.AtLeast(SevHigh))
	assert.True(t, SevHigh.AtLeast(SevHigh))
	assert.False(t, SevLow.AtLeast(SevMedium))
	assert.False(t, Severity("bogus").AtLeast(SevLow))
}

func TestSummarizeMatchesDistribution(t *testing.T) {
	findings := []Finding{
		{Severity: SevCritical},
		{Severity: SevHigh},
		{Severity: SevHigh},
		{Severity: SevLow},
	}

	s := Summarize(findings)

	assert.Equal(t, Summary{Critical: 1, High: 2, Medium: 0, Low: 1, Total: 4}, s)
	total := 0
	for _, sev := range Severities {
		total += s.Count(sev)
	}
	assert.Equal(t, s.Total, total)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
