// Package services defines the collaborator contracts the onboarding engine
// consumes: member directory, project/committee service, Slack workspace,
// mailer, and landscape publisher.
//
// The engine is agnostic to how these are implemented. Production adapters
// wrap the upstream HTTP APIs; the stub sub-package provides in-process fakes
// for local runs and tests. Implementations are injected into the
// orchestrator's constructor, never reached through package-level state.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/lfx-eng/onboard/internal/types"
)

// ErrNotFound is returned when a member organization or project does not
// exist. Lookup-phase ErrNotFound is fatal for a session: no contacts can be
// processed without the member and project ids.
var ErrNotFound = errors.New("not found")

// MemberService looks up member organizations and their contacts.
type MemberService interface {
	GetMemberByOrganization(ctx context.Context, orgName string) (*types.MemberInfo, error)
	GetMemberContacts(ctx context.Context, memberID string) ([]*types.Contact, error)
}

// CommitteeMember is the payload for adding a contact to a committee.
type CommitteeMember struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Title        string    `json:"title,omitempty"`
	Role         string    `json:"role"`
	JoinDate     time.Time `json:"join_date"`
}

// ProjectService looks up projects and manages committee membership.
type ProjectService interface {
	GetProjectBySlug(ctx context.Context, slug string) (*types.ProjectInfo, error)
	GetProjectCommittees(ctx context.Context, projectID string) ([]*types.Committee, error)
	// IsCommitteeMember is an idempotent read used to short-circuit duplicate
	// adds before any write is attempted.
	IsCommitteeMember(ctx context.Context, projectID, committeeID, email string) (bool, error)
	AddCommitteeMember(ctx context.Context, projectID, committeeID string, member CommitteeMember) error
}

// SlackService invites a contact to the chat workspace and assigns channels.
// Returns the workspace user id on success.
type SlackService interface {
	InviteToWorkspace(ctx context.Context, contact *types.Contact, organization string, channels []string, committeeName string) (string, error)
}

// EmailService sends the committee-specific welcome email.
type EmailService interface {
	SendWelcomeEmail(ctx context.Context, contact *types.Contact, project *types.ProjectInfo, committeeName string) error
}

// LandscapeService publishes the organization's entry to the project
// landscape. Returns a reference to the created pull request.
type LandscapeService interface {
	UpdateMemberLogo(ctx context.Context, projectSlug, organization, logoURL string) (string, error)
}
