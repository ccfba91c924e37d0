package runner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataDir = filepath.Join("..", "..", "data")

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestLoadTestSuiteWithExpansion(t *testing.T) {
	casesDir := filepath.Join("..", "cases")
	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, "all.json"), casesDir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Town walk", jobs[0].Name)
	assert.Equal(t, "Rejected commands", jobs[1].Name)

	_, err = LoadTestSuiteWithExpansion(filepath.Join(casesDir, "missing.json"), casesDir)
	assert.Error(t, err)
}

func TestRunSuite(t *testing.T) {
	r := NewRunner(dataDir)
	suite := TestSuite{
		Name: "walk",
		Steps: []TestStep{
			{Name: "move", Input: "move temple", Expectations: Expectations{Location: strPtr("temple"), Tick: intPtr(5)}},
			{Name: "reset", Input: ResetWorldInput, Expectations: Expectations{Location: strPtr("market_square"), Tick: intPtr(0)}},
			{Name: "usage", Input: "move", Expectations: Expectations{ErrorCode: UsageErrorCode}},
			{Name: "wait", Ticks: 2, Expectations: Expectations{Tick: intPtr(2)}},
		},
	}

	result, err := r.RunSuite(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, result.Results, 4)
	assert.True(t, result.Results[1].IsReset)
	for _, step := range result.Results {
		assert.True(t, step.Success, step.StepName)
	}
}

func TestRunSuite_Failures(t *testing.T) {
	suite := TestSuite{
		Name: "bad",
		Steps: []TestStep{
			{Name: "wrong place", Input: "move temple", Expectations: Expectations{Location: strPtr("docks")}},
			{Name: "unexpected success", Input: "look", Expectations: Expectations{ErrorCode: "INVALID_INTENT"}},
		},
	}

	r := NewRunner(dataDir)
	result, err := r.RunSuite(context.Background(), suite)
	assert.ErrorContains(t, err, "expected location docks, got temple")
	assert.Len(t, result.Results, 2, "continue mode runs every step")

	r.ErrorHandlingMode = ErrorHandlingExit
	result, err = r.RunSuite(context.Background(), suite)
	assert.Error(t, err)
	assert.Len(t, result.Results, 1)
}
