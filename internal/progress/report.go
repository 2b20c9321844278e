package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/lfx-eng/onboard/internal/types"
)

// RenderReport writes a styled session report.
func RenderReport(w io.Writer, report *types.Report) {
	s := report.Session
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Session %d: %s → %s", s.ID, s.OrganizationName, s.ProjectSlug)))
	fmt.Fprintf(w, "%s status: %s, started %s", accentStyle.Render(iconInfo), s.Status, s.StartedAt.Local().Format(time.RFC822))
	if s.CompletedAt != nil {
		fmt.Fprintf(w, ", completed %s", s.CompletedAt.Local().Format(time.RFC822))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  total %d, successful %d, failed %d\n", s.TotalContacts, s.SuccessfulContacts, s.FailedContacts)
	fmt.Fprintln(w, mutedStyle.Render(separator))

	for _, c := range report.Contacts {
		fmt.Fprintf(w, "%s %s (%s)\n", overallIcon(c.OverallStatus), c.Email, c.ContactType)
		fmt.Fprintf(w, "    committee %s", renderStep(c.CommitteeStatus))
		if c.CommitteeID != "" {
			fmt.Fprintf(w, " %s", mutedStyle.Render(c.CommitteeID))
		}
		fmt.Fprintf(w, "  slack %s", renderStep(c.SlackStatus))
		if c.SlackUserID != "" {
			fmt.Fprintf(w, " %s", mutedStyle.Render(c.SlackUserID))
		}
		fmt.Fprintf(w, "  email %s\n", renderStep(c.EmailStatus))
	}

	if len(report.TypeSummary) > 0 {
		fmt.Fprintln(w, mutedStyle.Render(separator))
		for _, ts := range report.TypeSummary {
			fmt.Fprintf(w, "  %-10s %d/%d successful\n", ts.ContactType, ts.Successful, ts.Total)
		}
	}
}

func renderStep(status types.StepStatus) string {
	switch status {
	case types.StepSuccess, types.StepAlreadyMember:
		return passStyle.Render(string(status))
	case types.StepFailed:
		return failStyle.Render(string(status))
	case types.StepSkipped:
		return warnStyle.Render(string(status))
	}
	return mutedStyle.Render(string(status))
}
