package runner

import (
	"time"
)

// ResetWorldInput is a step input that rebuilds the world from its data
// directory instead of sending a command.
const ResetWorldInput = "RESET_WORLD"

// TestSuite defines a complete integration test scenario.
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name     string     `json:"name"`
	PlayerID string     `json:"player_id,omitempty"` // defaults to hero
	Seed     int64      `json:"seed,omitempty"`      // 0 uses the runner's seed
	Steps    []TestStep `json:"steps,omitempty"`     // Used for regular tests
	Cases    []string   `json:"cases,omitempty"`     // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one typed line, or a bare clock advance when Ticks is set,
// and what should hold afterwards.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Input        string       `json:"input,omitempty"`
	Ticks        int          `json:"ticks,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Location  *string           `json:"location,omitempty"`
	Inventory []string          `json:"inventory,omitempty"` // order independent
	Tick      *int              `json:"tick,omitempty"`
	HP        *int              `json:"hp,omitempty"`
	Dead      *bool             `json:"dead,omitempty"`
	Equipped  map[string]string `json:"equipped,omitempty"` // slot -> item id

	// Other characters' locations
	NPCLocations map[string]string `json:"npc_locations,omitempty"`

	// Expected rejection code, e.g. "INVALID_INTENT" or "USAGE"
	ErrorCode string `json:"error_code,omitempty"`

	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // reset steps do not count toward pass/fail metrics
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  string // session id used for this run
}
