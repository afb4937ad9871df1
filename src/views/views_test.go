package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
views:
  - name: uk
    label: United Kingdom
    sheet_url: https://docs.google.com/spreadsheets/d/abc123/export?format=csv
    excluded_stages: ["A Closed", "X Lost"]
    default_targets:
      monthly_meetings: 8
      monthly_weighted: 40000
    targets:
      alice:
        monthly_meetings: 12
        monthly_weighted: 60000
  - name: us-east
    label: US East
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"uk", "us-east"}, reg.Names())

	uk, err := reg.Get("uk")
	require.NoError(t, err)
	assert.Equal(t, "United Kingdom", uk.Label)
	assert.Equal(t, 12, uk.TargetsFor("alice").MonthlyMeetings)
	assert.Equal(t, 8, uk.TargetsFor("bob").MonthlyMeetings)

	set := uk.ExcludedStageSet()
	assert.True(t, set["A Closed"])
	assert.True(t, set["X Lost"])
	assert.False(t, set["F Inbox"], "configured set replaces the defaults")
}

func TestParse_DefaultExcludedStages(t *testing.T) {
	reg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	us, err := reg.Get("us-east")
	require.NoError(t, err)

	set := us.ExcludedStageSet()
	for _, stage := range DefaultExcludedStages {
		assert.True(t, set[stage], stage)
	}
}

func TestGet_UnknownView(t *testing.T) {
	reg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	_, err = reg.Get("emea")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty views", "views: []"},
		{"missing name", "views:\n  - label: nameless"},
		{"bad sheet url", "views:\n  - name: uk\n    sheet_url: not-a-url"},
		{"duplicate names", "views:\n  - name: uk\n  - name: uk"},
		{"not yaml", "views: ["},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}
