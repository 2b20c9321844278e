// Package onboard implements the onboarding orchestration engine: the batch
// scheduler, per-contact workflow, committee-assignment retry policy, and the
// cumulative failure-rate monitor, all driving durable state through the
// storage layer.
package onboard

import (
	"strings"

	"github.com/lfx-eng/onboard/internal/types"
)

// CommitteeMap maps a contact type to the project committee id the contact is
// assigned to. Built once per session from the project's committee list and
// read-only afterwards, so it is safe for concurrent use.
type CommitteeMap map[types.ContactType]string

// contactTypes in reporting order.
var contactTypes = []types.ContactType{
	types.ContactPrimary,
	types.ContactMarketing,
	types.ContactTechnical,
}

// BuildCommitteeMap matches committees to contact types by name. Governing
// board committees take primary contacts, marketing committees marketing
// contacts, technical committees technical contacts. When several committees
// match a type the last one wins, mirroring a plain map build.
func BuildCommitteeMap(committees []*types.Committee) CommitteeMap {
	m := make(CommitteeMap)
	for _, c := range committees {
		name := strings.ToLower(c.Name)
		switch {
		case strings.Contains(name, "governing") || strings.Contains(name, "board"):
			m[types.ContactPrimary] = c.ID
		case strings.Contains(name, "marketing"):
			m[types.ContactMarketing] = c.ID
		case strings.Contains(name, "technical") || strings.Contains(name, "tech"):
			m[types.ContactTechnical] = c.ID
		}
	}
	return m
}

// Lookup returns the committee id for a contact type.
func (m CommitteeMap) Lookup(t types.ContactType) (string, bool) {
	id, ok := m[t]
	return id, ok
}

// Missing returns the contact types without a matched committee, in reporting
// order.
func (m CommitteeMap) Missing() []types.ContactType {
	var missing []types.ContactType
	for _, t := range contactTypes {
		if _, ok := m[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// CommitteeName returns the display name used in Slack invitations and
// welcome emails for a contact type.
func CommitteeName(t types.ContactType) string {
	switch t {
	case types.ContactPrimary:
		return "Governing Board"
	case types.ContactMarketing:
		return "Marketing Committee"
	case types.ContactTechnical:
		return "Technical Committee"
	}
	return "Project Committee"
}

// SlackChannels returns the workspace channels a contact is added to: the
// project-wide base channels plus the committee-specific set for its type.
func SlackChannels(t types.ContactType, projectSlug string) []string {
	channels := []string{"#general", "#welcome", "#" + projectSlug}
	switch t {
	case types.ContactPrimary:
		channels = append(channels, "#board", "#announcements", "#strategic-planning")
	case types.ContactMarketing:
		channels = append(channels, "#marketing", "#events", "#content-strategy", "#brand")
	case types.ContactTechnical:
		channels = append(channels, "#tech-discussion", "#architecture", "#dev-updates")
	}
	return channels
}
