package salescsv

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/dealfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestParse_BasicFile(t *testing.T) {
	csvData := `owner,company,stage,type_of_source,pipeline,discovery_date
alice,Acme Ltd,E Intro attended,Outbound,"12,500.00",2025-01-10
bob,Globex,D POA Booked,Inbound,£8000,10-02-2025
carol,Initech,B Legals,Client referral,3000,
`
	deals, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	require.NoError(t, err)
	require.Len(t, deals, 3)

	assert.Equal(t, "alice", deals[0].Owner)
	assert.Equal(t, "Acme Ltd", deals[0].Company)
	assert.Equal(t, "E Intro attended", deals[0].Stage)
	assert.Equal(t, "Outbound", deals[0].SourceType)
	assert.Equal(t, 12500.0, deals[0].PipelineValue)
	require.NotNil(t, deals[0].DiscoveryDate)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), *deals[0].DiscoveryDate)
	assert.Equal(t, "uk", deals[0].View)
	assert.NotEmpty(t, deals[0].HashID)

	// DD-MM-YYYY is accepted too.
	assert.Equal(t, 8000.0, deals[1].PipelineValue)
	require.NotNil(t, deals[1].DiscoveryDate)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), *deals[1].DiscoveryDate)

	// Empty discovery date stays unset rather than zero-valued.
	assert.Nil(t, deals[2].DiscoveryDate)
}

func TestParse_AlternateHeaderSpellings(t *testing.T) {
	csvData := `AE,Account,Stage,Source Type,Pipeline Value,Discovery
alice,Acme,C Proposal sent,Partnership,500,2025-03-01
`
	deals, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "alice", deals[0].Owner)
	assert.Equal(t, "Partnership", deals[0].SourceType)
	assert.Equal(t, 500.0, deals[0].PipelineValue)
}

func TestParse_MalformedCellsDegradeRowNotBatch(t *testing.T) {
	csvData := `owner,stage,source_type,pipeline,discovery_date
alice,E Intro attended,Outbound,not-a-number,2025-01-10
bob,D POA Booked,Inbound,4000,32/13/2025
carol,B Legals,Outbound,1000,2025-02-01
`
	deals, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	require.NoError(t, err)
	require.Len(t, deals, 3)

	assert.Equal(t, 0.0, deals[0].PipelineValue, "bad value degrades to 0")
	assert.Nil(t, deals[1].DiscoveryDate, "bad date degrades to unset")
	assert.Equal(t, 4000.0, deals[1].PipelineValue)
	assert.Equal(t, 1000.0, deals[2].PipelineValue)
}

func TestParse_SkipsBlankRows(t *testing.T) {
	csvData := "owner,stage,pipeline\nalice,D POA Booked,100\n,,\n,,\n"
	deals, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	require.NoError(t, err)
	assert.Len(t, deals, 1)
}

func TestParse_MissingStageColumnFails(t *testing.T) {
	csvData := "foo,bar\n1,2\n"
	_, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	assert.Error(t, err)
}

func TestParse_HashStableAcrossUploads(t *testing.T) {
	csvData := "owner,stage,pipeline,discovery_date\nalice,D POA Booked,100,2025-01-05\n"
	first, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	require.NoError(t, err)
	second, err := NewParser().Parse(strings.NewReader(csvData), "uk")
	require.NoError(t, err)
	assert.Equal(t, first[0].HashID, second[0].HashID)

	// Same row under a different view hashes differently.
	other, err := NewParser().Parse(strings.NewReader(csvData), "us-east")
	require.NoError(t, err)
	assert.NotEqual(t, first[0].HashID, other[0].HashID)
}
