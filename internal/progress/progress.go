// Package progress reports the state of an onboarding run to a terminal.
//
// The orchestrator emits events through the Reporter interface; the Terminal
// implementation renders them with lipgloss styling, Discard swallows them.
// Reporters only observe the run, they never influence it.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/lfx-eng/onboard/internal/types"
)

// Reporter receives run lifecycle events from the orchestrator.
type Reporter interface {
	SessionStarted(sessionID int64, orgName, projectSlug string, totalContacts int)
	BatchStarted(batchNum, totalBatches, size int)
	BatchFinished(batchNum, totalBatches int, stats types.SessionStats)
	ContactStarted(contact *types.Contact)
	Step(contact *types.Contact, kind types.EventType, status types.StepStatus, detail string)
	ContactFinished(contact *types.Contact, overall types.OverallStatus)
	Alert(message string)
	Info(format string, args ...any)
	SessionFinished(stats types.SessionStats, elapsed time.Duration)
}

// Terminal renders run events to a writer with lipgloss styling.
type Terminal struct {
	w       io.Writer
	quiet   bool // suppress everything but alerts and the final summary
	verbose bool // include per-step detail lines
}

// NewTerminal creates a terminal reporter. quiet suppresses per-contact
// output; verbose adds per-step detail. quiet wins when both are set.
func NewTerminal(w io.Writer, quiet, verbose bool) *Terminal {
	return &Terminal{w: w, quiet: quiet, verbose: verbose && !quiet}
}

func (t *Terminal) SessionStarted(sessionID int64, orgName, projectSlug string, totalContacts int) {
	if t.quiet {
		return
	}
	fmt.Fprintln(t.w, headerStyle.Render(fmt.Sprintf("Onboarding %s → %s", orgName, projectSlug)))
	fmt.Fprintf(t.w, "%s session %d, %d contact(s)\n", accentStyle.Render(iconInfo), sessionID, totalContacts)
	fmt.Fprintln(t.w, mutedStyle.Render(separator))
}

func (t *Terminal) BatchStarted(batchNum, totalBatches, size int) {
	if t.quiet {
		return
	}
	fmt.Fprintf(t.w, "%s\n", accentStyle.Render(fmt.Sprintf("Batch %d/%d (%d contacts)", batchNum, totalBatches, size)))
}

func (t *Terminal) BatchFinished(batchNum, totalBatches int, stats types.SessionStats) {
	if t.quiet {
		return
	}
	fmt.Fprintf(t.w, "  batch %d/%d done: %d/%d successful, %d failed\n",
		batchNum, totalBatches, stats.Successful, stats.Total, stats.Failed)
}

func (t *Terminal) ContactStarted(contact *types.Contact) {
	if !t.verbose {
		return
	}
	fmt.Fprintf(t.w, "  %s %s (%s, %s)\n",
		mutedStyle.Render("→"), contact.FullName(), contact.Email, contact.ContactType)
}

func (t *Terminal) Step(contact *types.Contact, kind types.EventType, status types.StepStatus, detail string) {
	if !t.verbose {
		return
	}
	line := fmt.Sprintf("    %s %s: %s", stepIcon(status), kind, status)
	if detail != "" {
		line += " " + mutedStyle.Render("("+detail+")")
	}
	fmt.Fprintln(t.w, line)
}

func (t *Terminal) ContactFinished(contact *types.Contact, overall types.OverallStatus) {
	if t.quiet {
		return
	}
	fmt.Fprintf(t.w, "  %s %s: %s\n", overallIcon(overall), contact.Email, overall)
}

func (t *Terminal) Alert(message string) {
	fmt.Fprintf(t.w, "%s %s\n", warnStyle.Render(iconWarn), warnStyle.Render(message))
}

func (t *Terminal) Info(format string, args ...any) {
	if t.quiet {
		return
	}
	fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *Terminal) SessionFinished(stats types.SessionStats, elapsed time.Duration) {
	fmt.Fprintln(t.w, mutedStyle.Render(separator))
	icon := passStyle.Render(iconPass)
	if stats.Failed > 0 {
		icon = failStyle.Render(iconFail)
	}
	fmt.Fprintf(t.w, "%s %d/%d contact(s) onboarded, %d failed (%s)\n",
		icon, stats.Successful, stats.Total, stats.Failed, elapsed.Round(time.Millisecond))
}

func stepIcon(status types.StepStatus) string {
	switch status {
	case types.StepSuccess, types.StepAlreadyMember:
		return passStyle.Render(iconPass)
	case types.StepFailed:
		return failStyle.Render(iconFail)
	case types.StepSkipped:
		return mutedStyle.Render(iconSkip)
	}
	return mutedStyle.Render(iconInfo)
}

func overallIcon(overall types.OverallStatus) string {
	switch overall {
	case types.OverallCompleted:
		return passStyle.Render(iconPass)
	case types.OverallFailed:
		return failStyle.Render(iconFail)
	case types.OverallPartial:
		return warnStyle.Render(iconWarn)
	}
	return mutedStyle.Render(iconInfo)
}

// Discard is a Reporter that drops every event. Used in tests and when the
// engine is embedded.
type Discard struct{}

func (Discard) SessionStarted(int64, string, string, int)                      {}
func (Discard) BatchStarted(int, int, int)                                     {}
func (Discard) BatchFinished(int, int, types.SessionStats)                     {}
func (Discard) ContactStarted(*types.Contact)                                  {}
func (Discard) Step(*types.Contact, types.EventType, types.StepStatus, string) {}
func (Discard) ContactFinished(*types.Contact, types.OverallStatus)            {}
func (Discard) Alert(string)                                                   {}
func (Discard) Info(string, ...any)                                            {}
func (Discard) SessionFinished(types.SessionStats, time.Duration)              {}

var (
	_ Reporter = (*Terminal)(nil)
	_ Reporter = Discard{}
)
