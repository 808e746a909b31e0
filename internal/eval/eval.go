// Package eval replays a golden prompt set through the chat pipeline and
// scores intent extraction, follow-up behavior, and case handling.
package eval

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wismo-agent/server/internal/agent/graph"
	"github.com/wismo-agent/server/internal/agent/model"
)

//go:embed test_prompts.jsonl
var defaultPrompts []byte

// followupPhrases mark a reply as "asked the customer for details". The
// not-found reply counts because it also asks for the order id.
var followupPhrases = []string{
	"To help you, I need a couple details",
	"I need a couple details",
	"Please confirm your order ID",
}

// Case is one golden prompt with its optional expectations. A nil
// expectation means "don't check".
type Case struct {
	ID        string `json:"id"`
	Suite     string `json:"suite,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	OrderID   string `json:"order_id,omitempty"`
	Email     string `json:"email,omitempty"`

	ExpectedIntent      *string `json:"expected_intent,omitempty"`
	ExpectedFollowup    *bool   `json:"expected_followup,omitempty"`
	ExpectedCaseCreated *bool   `json:"expected_case_created,omitempty"`
	ExpectedReuseCase   *bool   `json:"expected_reuse_case,omitempty"`
}

// LoadCases reads JSONL rows, skipping blank lines.
func LoadCases(r io.Reader) ([]Case, error) {
	var cases []Case
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var c Case
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, fmt.Errorf("prompts line %d: %w", line, err)
		}
		if c.ID == "" || c.Message == "" {
			return nil, fmt.Errorf("prompts line %d: id and message are required", line)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return cases, nil
}

// DefaultCases returns the embedded golden set.
func DefaultCases() []Case {
	cases, err := LoadCases(strings.NewReader(string(defaultPrompts)))
	if err != nil {
		panic(fmt.Sprintf("embedded prompts invalid: %v", err))
	}
	return cases
}

func suiteName(c Case) string {
	s := strings.ToLower(strings.TrimSpace(c.Suite))
	if s == "" {
		return "core"
	}
	return s
}

func isFollowup(reply string) bool {
	for _, p := range followupPhrases {
		if strings.Contains(reply, p) {
			return true
		}
	}
	return false
}

// topAction distills the audit trail into the decision and whether a case
// was created or reused.
type topAction struct {
	Decision string
	Tool     string
	CaseID   string
}

func extractTopAction(actions []model.ActionEvent) topAction {
	var top topAction
	for _, a := range actions {
		if a.Kind == model.EventDecision {
			top.Decision = detailString(a.Detail, "decision")
		}
		if a.Tool == model.ToolCreateCase || a.Tool == model.ToolReuseCase {
			top.Tool = a.Tool
			top.CaseID = detailString(a.Detail, "case_id")
		}
	}
	return top
}

func detailString(detail map[string]any, key string) string {
	if detail == nil {
		return ""
	}
	if s, ok := detail[key].(string); ok {
		return s
	}
	return ""
}

// Options configure one eval run.
type Options struct {
	// Mode is recorded in the report (e.g. "rules" or "gemini").
	Mode string

	// RunID suffixes every session id so reruns never see stale sessions.
	// Empty means current unix seconds.
	RunID string
}

// Report is the full eval outcome: the overall result over all rows plus one
// result per suite. Suites rerun rows with the same run id, so sessions
// created in the overall pass carry over by design; case expectations check
// existence (create or reuse), which holds across both passes.
type Report struct {
	RunID   string                  `json:"run_id"`
	Mode    string                  `json:"mode"`
	Overall *SuiteResult            `json:"overall"`
	Suites  map[string]*SuiteResult `json:"suites"`
}

// SuiteResult aggregates one evaluated row set.
type SuiteResult struct {
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	PassRate float64      `json:"pass_rate"`
	Metrics  Metrics      `json:"metrics"`
	Failures []RowOutcome `json:"failures"`
	Results  []RowOutcome `json:"results"`
}

// RowExpected echoes the case expectations into the report.
type RowExpected struct {
	ExpectedIntent      *string `json:"expected_intent"`
	ExpectedFollowup    *bool   `json:"expected_followup"`
	ExpectedCaseCreated *bool   `json:"expected_case_created"`
	ExpectedReuseCase   *bool   `json:"expected_reuse_case"`
}

// RowGot captures what the pipeline actually did for one row.
type RowGot struct {
	Reply         string   `json:"reply"`
	Intent        *string  `json:"intent"`
	MissingFields []string `json:"missing_fields"`
	Confidence    *float64 `json:"confidence"`
	Decision      string   `json:"decision,omitempty"`
	Tool          string   `json:"tool,omitempty"`
	CaseID        string   `json:"case_id,omitempty"`
	CaseEvent     string   `json:"case_event"`
}

// RowOutcome is one evaluated row.
type RowOutcome struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Message   string      `json:"message,omitempty"`
	Expected  RowExpected `json:"expected"`
	Got       RowGot      `json:"got"`
	Pass      bool        `json:"pass"`
	Reasons   []string    `json:"reasons,omitempty"`
}

// Run evaluates all rows as one overall pass, then per suite.
func Run(ctx context.Context, runner graph.Runner, cases []Case, opts Options) *Report {
	runID := opts.RunID
	if runID == "" {
		runID = strconv.FormatInt(time.Now().Unix(), 10)
	}

	report := &Report{
		RunID:   runID,
		Mode:    opts.Mode,
		Overall: evaluateRows(ctx, runner, cases, runID),
		Suites:  make(map[string]*SuiteResult),
	}

	grouped := make(map[string][]Case)
	var order []string
	for _, c := range cases {
		name := suiteName(c)
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], c)
	}
	sort.Strings(order)
	for _, name := range order {
		report.Suites[name] = evaluateRows(ctx, runner, grouped[name], runID)
	}
	return report
}

const maxReportedFailures = 25

func evaluateRows(ctx context.Context, runner graph.Runner, rows []Case, runID string) *SuiteResult {
	res := &SuiteResult{
		Total:    len(rows),
		Failures: []RowOutcome{},
		Results:  make([]RowOutcome, 0, len(rows)),
	}

	var (
		intentTrue, intentPred     []string
		followupTrue, followupPred []bool
		caseTrue, casePred         []bool
		reuseTrue, reusePred       []bool
	)

	for _, row := range rows {
		base := row.SessionID
		if base == "" {
			base = "eval_" + row.ID
		}
		sessionID := fmt.Sprintf("%s__run_%s", base, runID)

		outcome := RowOutcome{
			ID:        row.ID,
			SessionID: sessionID,
			Message:   row.Message,
			Expected: RowExpected{
				ExpectedIntent:      row.ExpectedIntent,
				ExpectedFollowup:    row.ExpectedFollowup,
				ExpectedCaseCreated: row.ExpectedCaseCreated,
				ExpectedReuseCase:   row.ExpectedReuseCase,
			},
			Pass: true,
		}

		result, err := runner.Invoke(ctx, model.ChatInput{
			SessionID: sessionID,
			Message:   row.Message,
			OrderID:   row.OrderID,
			Email:     row.Email,
		})
		if err != nil {
			outcome.Pass = false
			outcome.Reasons = append(outcome.Reasons, fmt.Sprintf("invoke error: %v", err))
			outcome.Got.CaseEvent = "none"
			res.Failures = append(res.Failures, outcome)
			res.Results = append(res.Results, outcome)
			continue
		}

		var intentGot *string
		var confidenceGot *float64
		if result.Intent != "" {
			v := string(result.Intent)
			intentGot = &v
			c := result.Confidence
			confidenceGot = &c
		}

		followupAsked := isFollowup(result.Reply)
		top := extractTopAction(result.Actions)
		created := top.Tool == model.ToolCreateCase
		reused := top.Tool == model.ToolReuseCase
		caseExists := created || reused
		caseEvent := "none"
		if created {
			caseEvent = "create"
		} else if reused {
			caseEvent = "reuse"
		}

		outcome.Got = RowGot{
			Reply:         result.Reply,
			Intent:        intentGot,
			MissingFields: result.MissingFields,
			Confidence:    confidenceGot,
			Decision:      top.Decision,
			Tool:          top.Tool,
			CaseID:        top.CaseID,
			CaseEvent:     caseEvent,
		}

		if row.ExpectedIntent != nil {
			got := ""
			if intentGot != nil {
				got = *intentGot
			}
			if got != *row.ExpectedIntent {
				outcome.Pass = false
				outcome.Reasons = append(outcome.Reasons,
					fmt.Sprintf("intent mismatch: expected=%s got=%s", *row.ExpectedIntent, got))
			}
			pred := got
			if pred == "" {
				pred = "unknown"
			}
			intentTrue = append(intentTrue, *row.ExpectedIntent)
			intentPred = append(intentPred, pred)
		}

		if row.ExpectedFollowup != nil {
			if followupAsked != *row.ExpectedFollowup {
				outcome.Pass = false
				outcome.Reasons = append(outcome.Reasons,
					fmt.Sprintf("followup mismatch: expected_followup=%t asked=%t", *row.ExpectedFollowup, followupAsked))
			}
			followupTrue = append(followupTrue, *row.ExpectedFollowup)
			followupPred = append(followupPred, followupAsked)
		}

		if row.ExpectedCaseCreated != nil {
			if caseExists != *row.ExpectedCaseCreated {
				outcome.Pass = false
				outcome.Reasons = append(outcome.Reasons,
					fmt.Sprintf("case_created mismatch: expected_case_created=%t got_exists=%t tool=%s", *row.ExpectedCaseCreated, caseExists, top.Tool))
			}
			caseTrue = append(caseTrue, *row.ExpectedCaseCreated)
			casePred = append(casePred, caseExists)
		}

		if row.ExpectedReuseCase != nil {
			if reused != *row.ExpectedReuseCase {
				outcome.Pass = false
				outcome.Reasons = append(outcome.Reasons,
					fmt.Sprintf("reuse_case mismatch: expected_reuse_case=%t got_reuse=%t", *row.ExpectedReuseCase, reused))
			}
			reuseTrue = append(reuseTrue, *row.ExpectedReuseCase)
			reusePred = append(reusePred, reused)
		}

		if outcome.Pass {
			res.Passed++
		} else if len(res.Failures) < maxReportedFailures {
			res.Failures = append(res.Failures, outcome)
		}
		res.Results = append(res.Results, outcome)
	}

	res.Failed = res.Total - res.Passed
	passRate := 0.0
	if res.Total > 0 {
		passRate = float64(res.Passed) / float64(res.Total) * 100
	}
	res.PassRate = round4(passRate)

	if len(intentTrue) > 0 {
		res.Metrics.Intent = ComputeClassification(intentTrue, intentPred)
	}
	if len(followupTrue) > 0 {
		acc := boolAccuracy(followupTrue, followupPred)
		res.Metrics.FollowupAccuracy = &acc
	}
	if len(caseTrue) > 0 {
		acc := boolAccuracy(caseTrue, casePred)
		res.Metrics.CaseCreatedAccuracy = &acc
	}
	if len(reuseTrue) > 0 {
		acc := boolAccuracy(reuseTrue, reusePred)
		res.Metrics.ReuseCaseAccuracy = &acc
	}
	res.Metrics.TaskSuccessRate = res.PassRate

	return res
}
