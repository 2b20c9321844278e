package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lfx-eng/onboard/internal/types"
)

func sampleContact() *types.Contact {
	return &types.Contact{
		ContactID:   "cnt-001",
		Email:       "john.doe@acmecorp.com",
		FirstName:   "John",
		LastName:    "Doe",
		ContactType: types.ContactPrimary,
	}
}

func TestTerminalNormalOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, false, false)

	r.SessionStarted(1, "Acme Corp", "cncf", 3)
	r.BatchStarted(1, 1, 3)
	r.ContactFinished(sampleContact(), types.OverallCompleted)
	r.SessionFinished(types.SessionStats{Total: 3, Successful: 3}, 1200*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "cncf")
	assert.Contains(t, out, "Batch 1/1")
	assert.Contains(t, out, "john.doe@acmecorp.com")
	assert.Contains(t, out, "3/3 contact(s) onboarded")
	// Step detail only appears in verbose mode.
	assert.NotContains(t, out, "committee:")
}

func TestTerminalVerboseIncludesSteps(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, false, true)

	c := sampleContact()
	r.ContactStarted(c)
	r.Step(c, types.EventCommittee, types.StepSuccess, "comm-001")
	r.Step(c, types.EventSlack, types.StepFailed, "invite rejected")

	out := buf.String()
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "committee: success")
	assert.Contains(t, out, "slack: failed")
	assert.Contains(t, out, "invite rejected")
}

func TestTerminalQuietKeepsAlertsAndSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf, true, true)

	r.SessionStarted(1, "Acme Corp", "cncf", 3)
	r.BatchStarted(1, 1, 3)
	r.ContactStarted(sampleContact())
	r.ContactFinished(sampleContact(), types.OverallFailed)
	r.Alert("failure rate 0.30 exceeds threshold 0.20")
	r.SessionFinished(types.SessionStats{Total: 3, Successful: 2, Failed: 1}, time.Second)

	out := buf.String()
	assert.NotContains(t, out, "Acme Corp")
	assert.NotContains(t, out, "Batch")
	assert.Contains(t, out, "failure rate 0.30 exceeds threshold 0.20")
	assert.Contains(t, out, "2/3 contact(s) onboarded")
	// Quiet output is exactly the alert plus the two summary lines.
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 3)
}

func TestDiscardWritesNothing(t *testing.T) {
	var r Reporter = Discard{}
	r.SessionStarted(1, "x", "y", 1)
	r.Alert("ignored")
	r.SessionFinished(types.SessionStats{}, 0)
}
