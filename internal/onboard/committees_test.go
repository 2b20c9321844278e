package onboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lfx-eng/onboard/internal/types"
)

func TestBuildCommitteeMap(t *testing.T) {
	committees := []*types.Committee{
		{ID: "comm-001", Name: "Governing Board"},
		{ID: "comm-002", Name: "Marketing Committee"},
		{ID: "comm-003", Name: "Technical Steering Committee"},
	}
	m := BuildCommitteeMap(committees)

	id, ok := m.Lookup(types.ContactPrimary)
	assert.True(t, ok)
	assert.Equal(t, "comm-001", id)

	id, ok = m.Lookup(types.ContactMarketing)
	assert.True(t, ok)
	assert.Equal(t, "comm-002", id)

	id, ok = m.Lookup(types.ContactTechnical)
	assert.True(t, ok)
	assert.Equal(t, "comm-003", id)

	assert.Empty(t, m.Missing())
}

func TestBuildCommitteeMapNameVariants(t *testing.T) {
	tests := []struct {
		name string
		want types.ContactType
	}{
		{"Board of Directors", types.ContactPrimary},
		{"governing council", types.ContactPrimary},
		{"Marketing & Outreach", types.ContactMarketing},
		{"Tech Advisory Group", types.ContactTechnical},
		{"Technical Committee", types.ContactTechnical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildCommitteeMap([]*types.Committee{{ID: "c1", Name: tt.name}})
			id, ok := m.Lookup(tt.want)
			assert.True(t, ok)
			assert.Equal(t, "c1", id)
		})
	}
}

func TestCommitteeMapMissing(t *testing.T) {
	m := BuildCommitteeMap([]*types.Committee{
		{ID: "comm-001", Name: "Governing Board"},
		{ID: "comm-002", Name: "Marketing Committee"},
		{ID: "x", Name: "Finance Committee"}, // matches nothing
	})
	assert.Equal(t, []types.ContactType{types.ContactTechnical}, m.Missing())

	empty := BuildCommitteeMap(nil)
	assert.Equal(t, contactTypes, empty.Missing())
}

func TestCommitteeName(t *testing.T) {
	assert.Equal(t, "Governing Board", CommitteeName(types.ContactPrimary))
	assert.Equal(t, "Marketing Committee", CommitteeName(types.ContactMarketing))
	assert.Equal(t, "Technical Committee", CommitteeName(types.ContactTechnical))
	assert.Equal(t, "Project Committee", CommitteeName(types.ContactType("other")))
}

func TestSlackChannels(t *testing.T) {
	channels := SlackChannels(types.ContactTechnical, "cncf")
	assert.Equal(t, []string{
		"#general", "#welcome", "#cncf",
		"#tech-discussion", "#architecture", "#dev-updates",
	}, channels)

	// Unknown types still get the project-wide base channels.
	base := SlackChannels(types.ContactType("other"), "cncf")
	assert.Equal(t, []string{"#general", "#welcome", "#cncf"}, base)
}
