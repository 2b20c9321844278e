package onboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lfx-eng/onboard/internal/config"
	"github.com/lfx-eng/onboard/internal/progress"
	"github.com/lfx-eng/onboard/internal/services"
	"github.com/lfx-eng/onboard/internal/storage"
	"github.com/lfx-eng/onboard/internal/telemetry"
	"github.com/lfx-eng/onboard/internal/types"
)

// Deps are the orchestrator's injected collaborators. Store, Members,
// Projects, Slack, and Email are required; Landscape, Reporter, Metrics, and
// Timer are optional.
type Deps struct {
	Store     storage.Store
	Members   services.MemberService
	Projects  services.ProjectService
	Slack     services.SlackService
	Email     services.EmailService
	Landscape services.LandscapeService

	Reporter progress.Reporter // nil means no output
	Metrics  *telemetry.Metrics

	// Timer overrides the retry backoff timer. Tests inject a fake to avoid
	// real sleeps; nil uses wall-clock delays.
	Timer backoff.Timer
}

// Orchestrator runs onboarding sessions end to end: session creation, member
// and project lookup, batch-wise contact processing, landscape publication,
// and the final report.
type Orchestrator struct {
	store     storage.Store
	members   services.MemberService
	projects  services.ProjectService
	slack     services.SlackService
	email     services.EmailService
	landscape services.LandscapeService

	cfg      *config.Config
	reporter progress.Reporter
	metrics  *telemetry.Metrics
	assigner *Assigner
}

// New creates an orchestrator.
func New(deps Deps, cfg *config.Config) *Orchestrator {
	reporter := deps.Reporter
	if reporter == nil {
		reporter = progress.Discard{}
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	assigner := NewAssigner(deps.Projects, cfg.MaxAttempts, cfg.RetryBaseDelay)
	assigner.timer = deps.Timer
	return &Orchestrator{
		store:     deps.Store,
		members:   deps.Members,
		projects:  deps.Projects,
		slack:     deps.Slack,
		email:     deps.Email,
		landscape: deps.Landscape,
		cfg:       cfg,
		reporter:  reporter,
		metrics:   metrics,
		assigner:  assigner,
	}
}

// run is the per-session working state shared by the batch and contact
// stages. committees is read-only after construction.
type run struct {
	sessionID  int64
	org        string
	project    *types.ProjectInfo
	committees CommitteeMap
}

// RunResult summarizes one finished session. Report reflects exactly the
// persisted state.
type RunResult struct {
	SessionID int64         `json:"session_id"`
	Report    *types.Report `json:"report"`
	Alerts    []Alert       `json:"alerts,omitempty"`

	// MissingCommittees lists contact types with no matching project
	// committee; their contacts were skipped for the committee step.
	MissingCommittees []types.ContactType `json:"missing_committees,omitempty"`

	// LandscapePR references the landscape pull request, when the update
	// succeeded. LandscapeError carries the failure otherwise; the landscape
	// step is best-effort and never fails the session.
	LandscapePR    string `json:"landscape_pr,omitempty"`
	LandscapeError string `json:"landscape_error,omitempty"`

	Elapsed     time.Duration `json:"elapsed"`
	SLAExceeded bool          `json:"sla_exceeded"`
}

// Run executes one onboarding session for an (organization, project) pair.
//
// Lookup failures (unknown organization or project) are fatal: no contacts
// can be processed, so the error propagates and no contact state is created.
// Every later failure is contained per contact and lands in the report.
func (o *Orchestrator) Run(ctx context.Context, orgName, projectSlug string) (*RunResult, error) {
	started := time.Now()

	member, err := o.members.GetMemberByOrganization(ctx, orgName)
	if err != nil {
		return nil, fmt.Errorf("looking up organization %q: %w", orgName, err)
	}
	project, err := o.projects.GetProjectBySlug(ctx, projectSlug)
	if err != nil {
		return nil, fmt.Errorf("looking up project %q: %w", projectSlug, err)
	}
	contacts, err := o.members.GetMemberContacts(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts for %s: %w", orgName, err)
	}
	committees, err := o.projects.GetProjectCommittees(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching committees for %s: %w", projectSlug, err)
	}

	sessionID, err := o.store.CreateSession(ctx, orgName, projectSlug, member.ID, project.ID)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	o.reporter.SessionStarted(sessionID, orgName, projectSlug, len(contacts))

	rows := make([]contactRow, 0, len(contacts))
	for _, c := range contacts {
		if c.Organization == "" {
			c.Organization = orgName
		}
		id, err := o.store.AddContact(ctx, sessionID, c)
		if err != nil {
			return nil, fmt.Errorf("persisting contact %s: %w", c.Email, err)
		}
		rows = append(rows, contactRow{dbID: id, contact: c})
	}

	r := &run{
		sessionID:  sessionID,
		org:        orgName,
		project:    project,
		committees: BuildCommitteeMap(committees),
	}
	result := &RunResult{
		SessionID:         sessionID,
		MissingCommittees: r.committees.Missing(),
	}
	for _, t := range result.MissingCommittees {
		o.reporter.Info("no committee matched for %s contacts; they will be skipped", t)
	}

	monitor := NewMonitor(orgName, projectSlug, o.cfg.MaxFailureRate)
	batches := Partition(rows, o.cfg.BatchSize)
	var cumulative []ContactResult
	for i, batch := range batches {
		o.reporter.BatchStarted(i+1, len(batches), len(batch))
		cumulative = append(cumulative, o.processBatch(ctx, r, batch)...)

		stats, err := o.store.RefreshSessionStats(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("refreshing session stats: %w", err)
		}
		o.reporter.BatchFinished(i+1, len(batches), *stats)

		if alert, ok := monitor.Check(cumulative); ok {
			result.Alerts = append(result.Alerts, alert)
			o.metrics.FailureAlert(ctx)
			o.reporter.Alert(alert.String())
		}

		if ctx.Err() != nil {
			break
		}
	}

	// Landscape publication is best-effort: a failure is reported, never
	// fatal.
	if o.landscape != nil {
		if pr, err := o.landscape.UpdateMemberLogo(ctx, projectSlug, orgName, ""); err != nil {
			result.LandscapeError = err.Error()
			o.reporter.Info("landscape update failed: %v", err)
		} else {
			result.LandscapePR = pr
			o.reporter.Info("landscape updated: %s", pr)
		}
	}

	stats, err := o.store.RefreshSessionStats(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("refreshing session stats: %w", err)
	}
	if err := o.store.CompleteSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("completing session: %w", err)
	}
	report, err := o.store.GetSessionReport(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("building session report: %w", err)
	}
	result.Report = report

	result.Elapsed = time.Since(started)
	// The SLA budget is observational: exceeding it is reported, the run is
	// never cut short.
	result.SLAExceeded = o.cfg.SLABudget > 0 && result.Elapsed > o.cfg.SLABudget
	if result.SLAExceeded {
		o.reporter.Info("run exceeded the SLA budget of %s (took %s)", o.cfg.SLABudget, result.Elapsed.Round(time.Second))
	}
	o.reporter.SessionFinished(*stats, result.Elapsed)
	return result, nil
}
