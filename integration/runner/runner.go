package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/handlers"
	"github.com/jwebster45206/hexsim/pkg/command"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// UsageErrorCode is reported for lines the command grammar rejects before
// anything is sent.
const UsageErrorCode = "USAGE"

// Runner executes integration suites. Every suite gets its own world,
// loaded from DataDir and served by the real API routes.
type Runner struct {
	DataDir           string
	Seed              int64
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(dataDir string) *Runner {
	return &Runner{
		DataDir:           dataDir,
		Seed:              1,
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// target is one running world behind an httptest server.
type target struct {
	app        *app.App
	server     *httptest.Server
	characters map[string]bool
}

func (t *target) close() {
	t.server.Close()
	_ = t.app.Close()
}

func (r *Runner) start(ctx context.Context, suite TestSuite) (*target, error) {
	cfg := &config.Config{
		DataDir:   r.DataDir,
		PlayerID:  suite.PlayerID,
		SessionID: uuid.NewString(),
		Seed:      r.Seed,
	}
	if cfg.PlayerID == "" {
		cfg.PlayerID = "hero"
	}
	if suite.Seed != 0 {
		cfg.Seed = suite.Seed
	}

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}
	t := &target{app: a, server: httptest.NewServer(a.Routes())}

	ids, err := ListCharacters(ctx, t.client(), t.server.URL)
	if err != nil {
		t.close()
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	t.characters = make(map[string]bool, len(ids))
	for _, id := range ids {
		t.characters[id] = true
	}
	return t, nil
}

func (t *target) client() *http.Client { return t.server.Client() }

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	t, err := r.start(ctx, suite)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, result.Error
	}
	defer func() {
		if t != nil {
			t.close()
		}
	}()
	result.Session = t.app.Session.ID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		var stepResult TestResult
		if step.Input == ResetWorldInput {
			stepResult, t = r.resetStep(ctx, suite, step, t)
			if t == nil {
				result.Results = append(result.Results, stepResult)
				result.Error = stepResult.Error
				break
			}
		} else {
			stepResult = r.executeStep(ctx, t, step)
		}
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// resetStep replaces the running world with a freshly loaded one. A nil
// target means the rebuild failed.
func (r *Runner) resetStep(ctx context.Context, suite TestSuite, step TestStep, old *target) (TestResult, *target) {
	start := time.Now()
	result := TestResult{StepName: step.Name, IsReset: true, ResponseText: "[WORLD RESET]"}

	old.close()
	t, err := r.start(ctx, suite)
	if err != nil {
		result.Error = fmt.Errorf("failed to reset world: %w", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := r.checkExpectations(ctx, t, step.Expectations, "", ""); err != nil {
		result.Error = fmt.Errorf("reset expectation failed: %w", err)
	} else {
		result.Success = true
	}
	result.Duration = time.Since(start)
	return result, t
}

// executeStep sends one step and checks its expectations.
func (r *Runner) executeStep(ctx context.Context, t *target, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	out, errCode, err := r.send(stepCtx, t, step)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	if out != nil {
		result.ResponseText = strings.Join(out.Lines, "\n")
	}

	if err := r.checkExpectations(stepCtx, t, step.Expectations, result.ResponseText, errCode); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// send runs the step against the API. A rejected command comes back as an
// error code rather than an error so steps can expect it.
func (r *Runner) send(ctx context.Context, t *target, step TestStep) (*handlers.OutcomeResponse, string, error) {
	if step.Ticks > 0 {
		out, err := PostTick(ctx, t.client(), t.server.URL, step.Ticks)
		if err != nil {
			return nil, "", fmt.Errorf("failed to advance clock: %w", err)
		}
		return out, "", nil
	}

	playerID := t.app.Session.PlayerID()
	req := handlers.CommandRequest{ActorID: playerID}
	res, err := command.Parse(step.Input, func(id string) bool { return t.characters[id] })
	var usage *command.UsageError
	switch {
	case errors.As(err, &usage):
		return nil, UsageErrorCode, nil
	case errors.Is(err, command.ErrUnknown):
		req.Text = step.Input
	case err != nil:
		return nil, "", fmt.Errorf("failed to parse %q: %w", step.Input, err)
	case res.Meta != "":
		return nil, "", fmt.Errorf("meta command %q cannot be sent to the API", step.Input)
	default:
		req.Tool, req.Params = res.Command.Tool, res.Command.Params
	}

	out, err := PostCommand(ctx, t.client(), t.server.URL, req)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Response.Code != "" {
		return nil, apiErr.Response.Code, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to post command: %w", err)
	}
	return out, "", nil
}

// checkExpectations validates the step's expectations against the world as
// the API now reports it.
func (r *Runner) checkExpectations(ctx context.Context, t *target, exp Expectations, responseText, errCode string) error {
	if exp.ErrorCode != errCode {
		if errCode == "" {
			return fmt.Errorf("expected error %s, but the command succeeded", exp.ErrorCode)
		}
		return fmt.Errorf("expected error %q, got %s", exp.ErrorCode, errCode)
	}

	if exp.Location != nil || len(exp.Inventory) > 0 || exp.Tick != nil || exp.HP != nil || exp.Dead != nil || len(exp.Equipped) > 0 {
		player, err := GetCharacter(ctx, t.client(), t.server.URL, t.app.Session.PlayerID())
		if err != nil {
			return fmt.Errorf("failed to get player: %w", err)
		}
		if err := checkPlayer(exp, player); err != nil {
			return err
		}
	}

	for npcID, expectedLocation := range exp.NPCLocations {
		npc, err := GetCharacter(ctx, t.client(), t.server.URL, npcID)
		if err != nil {
			return fmt.Errorf("expected character %s to exist: %w", npcID, err)
		}
		if npc.Location != expectedLocation {
			return fmt.Errorf("expected %s to be at %s, got %s", npcID, expectedLocation, npc.Location)
		}
	}

	lowerResponse := strings.ToLower(responseText)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't. Response: %q", expectedText, responseText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}

func checkPlayer(exp Expectations, resp *handlers.CharacterResponse) error {
	c := resp.Character
	if c == nil {
		return errors.New("API returned no character")
	}

	if exp.Location != nil && resp.Location != *exp.Location {
		return fmt.Errorf("expected location %s, got %s", *exp.Location, resp.Location)
	}

	if exp.Tick != nil && resp.Tick != *exp.Tick {
		return fmt.Errorf("expected tick %d, got %d", *exp.Tick, resp.Tick)
	}

	if len(exp.Inventory) > 0 {
		want := slices.Sorted(slices.Values(exp.Inventory))
		got := slices.Sorted(slices.Values(c.Inventory))
		if !slices.Equal(want, got) {
			return fmt.Errorf("expected inventory %v, got %v", want, got)
		}
	}

	for slot, itemID := range exp.Equipped {
		got := c.Slots[slot]
		if got == nil || *got != itemID {
			return fmt.Errorf("expected %s equipped in %s", itemID, slot)
		}
	}

	if exp.HP != nil && c.HP != *exp.HP {
		return fmt.Errorf("expected hp %d, got %d", *exp.HP, c.HP)
	}

	if exp.Dead != nil && c.IsDead() != *exp.Dead {
		return fmt.Errorf("expected dead to be %t, got %t", *exp.Dead, c.IsDead())
	}

	return nil
}
