package onboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lfx-eng/onboard/internal/types"
)

func resultsWith(failed, total int) []ContactResult {
	results := make([]ContactResult, total)
	for i := range results {
		if i < failed {
			results[i] = ContactResult{
				Committee: types.StepSuccess,
				Slack:     types.StepFailed,
				Email:     types.StepFailed,
				Overall:   types.OverallFailed,
			}
		} else {
			results[i] = ContactResult{
				Committee: types.StepSuccess,
				Slack:     types.StepSuccess,
				Email:     types.StepSuccess,
				Overall:   types.OverallCompleted,
			}
		}
	}
	return results
}

func TestFailureRate(t *testing.T) {
	assert.Equal(t, 0.0, FailureRate(nil))
	assert.Equal(t, 0.3, FailureRate(resultsWith(3, 10)))
	assert.Equal(t, 1.0, FailureRate(resultsWith(2, 2)))

	// Partial counts as a failure for the rate.
	partial := []ContactResult{{Overall: types.OverallPartial}}
	assert.Equal(t, 1.0, FailureRate(partial))
}

func TestMonitorThreshold(t *testing.T) {
	m := NewMonitor("Acme Corp", "cncf", 0.2)

	// 3 of 10 (30%) crosses the 20% threshold.
	alert, ok := m.Check(resultsWith(3, 10))
	assert.True(t, ok)
	assert.Equal(t, "Acme Corp", alert.Organization)
	assert.Equal(t, "cncf", alert.Project)
	assert.Equal(t, 3, alert.TotalFailures)
	assert.InDelta(t, 0.3, alert.FailureRate, 1e-9)
	assert.False(t, alert.Timestamp.IsZero())

	// 1 of 10 (10%) does not.
	_, ok = m.Check(resultsWith(1, 10))
	assert.False(t, ok)

	// Exactly at the threshold does not trigger: the rate must exceed it.
	_, ok = m.Check(resultsWith(2, 10))
	assert.False(t, ok)
}

func TestMonitorClassifiesFailuresBySubStep(t *testing.T) {
	m := NewMonitor("Acme Corp", "cncf", 0.2)
	results := []ContactResult{
		{Committee: types.StepFailed, Slack: types.StepFailed, Email: types.StepSuccess, Overall: types.OverallPartial},
		{Committee: types.StepSuccess, Slack: types.StepFailed, Email: types.StepFailed, Overall: types.OverallFailed},
		{Committee: types.StepSuccess, Slack: types.StepSuccess, Email: types.StepSuccess, Overall: types.OverallCompleted},
	}

	alert, ok := m.Check(results)
	assert.True(t, ok)
	assert.Equal(t, 2, alert.TotalFailures)
	assert.Equal(t, 1, alert.CommitteeFailures)
	assert.Equal(t, 2, alert.SlackFailures)
	assert.Equal(t, 1, alert.EmailFailures)

	assert.Contains(t, alert.String(), "Acme Corp/cncf")
	assert.Contains(t, alert.String(), "2 failure(s)")
}
