package onboard

import (
	"fmt"
	"time"

	"github.com/lfx-eng/onboard/internal/types"
)

// ContactResult is the in-memory outcome of one processed contact. The
// durable record in the store is authoritative; results exist so the
// failure-rate monitor can run without re-reading every row.
type ContactResult struct {
	Contact   *types.Contact
	Committee types.StepStatus
	Slack     types.StepStatus
	Email     types.StepStatus
	Overall   types.OverallStatus
}

// Alert describes one failure-rate threshold crossing.
type Alert struct {
	Organization      string    `json:"organization"`
	Project           string    `json:"project"`
	TotalFailures     int       `json:"total_failures"`
	FailureRate       float64   `json:"failure_rate"`
	CommitteeFailures int       `json:"committee_failures"`
	SlackFailures     int       `json:"slack_failures"`
	EmailFailures     int       `json:"email_failures"`
	Timestamp         time.Time `json:"timestamp"`
}

// String renders the alert for terminal output.
func (a Alert) String() string {
	return fmt.Sprintf("failure rate %.0f%% exceeds threshold for %s/%s: %d failure(s) (committee=%d slack=%d email=%d)",
		a.FailureRate*100, a.Organization, a.Project,
		a.TotalFailures, a.CommitteeFailures, a.SlackFailures, a.EmailFailures)
}

// Monitor is the cumulative failure-rate breaker. It is observational: it
// classifies failures and raises an alert above the threshold but never halts
// the run.
type Monitor struct {
	org       string
	project   string
	threshold float64
}

// NewMonitor creates a monitor for one session.
func NewMonitor(org, project string, threshold float64) *Monitor {
	return &Monitor{org: org, project: project, threshold: threshold}
}

// FailureRate is the ratio of contacts that did not complete (failed or
// partial) over all processed contacts. Zero for an empty result set.
func FailureRate(results []ContactResult) float64 {
	if len(results) == 0 {
		return 0
	}
	failures := 0
	for _, r := range results {
		if r.Overall == types.OverallFailed || r.Overall == types.OverallPartial {
			failures++
		}
	}
	return float64(failures) / float64(len(results))
}

// Check evaluates the cumulative result set. The returned bool reports
// whether the rate strictly exceeds the threshold; the Alert is only
// meaningful when it does. Called after every batch with all results so far,
// never reset per batch.
func (m *Monitor) Check(results []ContactResult) (Alert, bool) {
	rate := FailureRate(results)
	if rate <= m.threshold {
		return Alert{}, false
	}

	alert := Alert{
		Organization: m.org,
		Project:      m.project,
		FailureRate:  rate,
		Timestamp:    time.Now().UTC(),
	}
	for _, r := range results {
		if r.Overall != types.OverallFailed && r.Overall != types.OverallPartial {
			continue
		}
		alert.TotalFailures++
		if r.Committee == types.StepFailed {
			alert.CommitteeFailures++
		}
		if r.Slack == types.StepFailed {
			alert.SlackFailures++
		}
		if r.Email == types.StepFailed {
			alert.EmailFailures++
		}
	}
	return alert, true
}
