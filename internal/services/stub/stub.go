// Package stub provides in-process fakes for the collaborator services.
//
// Each fake keeps its own instance-scoped state behind a mutex, so tests get
// isolated collaborators and local runs (onboard run --stub) get a complete
// working system without network access. Failure injection goes through the
// exported hook fields; by default every call succeeds deterministically.
package stub

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lfx-eng/onboard/internal/services"
	"github.com/lfx-eng/onboard/internal/types"
)

// Verify the fakes satisfy the service contracts at compile time
var (
	_ services.MemberService    = (*Directory)(nil)
	_ services.ProjectService   = (*Projects)(nil)
	_ services.SlackService     = (*Slack)(nil)
	_ services.EmailService     = (*Email)(nil)
	_ services.LandscapeService = (*Landscape)(nil)
)

// Directory is a fake member directory.
type Directory struct {
	mu       sync.Mutex
	members  []*types.MemberInfo
	contacts map[string][]*types.Contact // member id -> contacts
}

// NewDirectory creates an empty fake directory.
func NewDirectory() *Directory {
	return &Directory{contacts: make(map[string][]*types.Contact)}
}

// AddMember registers an organization and its contacts.
func (d *Directory) AddMember(member *types.MemberInfo, contacts ...*types.Contact) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members = append(d.members, member)
	d.contacts[member.ID] = append(d.contacts[member.ID], contacts...)
}

func (d *Directory) GetMemberByOrganization(_ context.Context, orgName string) (*types.MemberInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.members {
		if strings.EqualFold(m.Name, orgName) {
			copy := *m
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("organization %q: %w", orgName, services.ErrNotFound)
}

func (d *Directory) GetMemberContacts(_ context.Context, memberID string) ([]*types.Contact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	contacts := make([]*types.Contact, 0, len(d.contacts[memberID]))
	for _, c := range d.contacts[memberID] {
		copy := *c
		contacts = append(contacts, &copy)
	}
	return contacts, nil
}

// Projects is a fake project/committee service. Committee membership is
// tracked per instance, so the idempotency of check-then-add is observable.
type Projects struct {
	mu         sync.Mutex
	projects   []*types.ProjectInfo
	committees map[string][]*types.Committee // project id -> committees
	members    map[string]bool               // "committeeID:email" -> member
	addCalls   map[string]int                // "committeeID:email" -> AddCommitteeMember call count

	// AddErr, when set, is consulted before each AddCommitteeMember write.
	// Returning a non-nil error simulates a transient service failure.
	AddErr func(committeeID, email string) error
}

// NewProjects creates an empty fake project service.
func NewProjects() *Projects {
	return &Projects{
		committees: make(map[string][]*types.Committee),
		members:    make(map[string]bool),
		addCalls:   make(map[string]int),
	}
}

// AddProject registers a project and its committees.
func (p *Projects) AddProject(project *types.ProjectInfo, committees ...*types.Committee) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projects = append(p.projects, project)
	p.committees[project.ID] = append(p.committees[project.ID], committees...)
}

func (p *Projects) GetProjectBySlug(_ context.Context, slug string) (*types.ProjectInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, proj := range p.projects {
		if proj.Slug == slug {
			copy := *proj
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", slug, services.ErrNotFound)
}

func (p *Projects) GetProjectCommittees(_ context.Context, projectID string) ([]*types.Committee, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	committees := make([]*types.Committee, 0, len(p.committees[projectID]))
	for _, c := range p.committees[projectID] {
		copy := *c
		committees = append(committees, &copy)
	}
	return committees, nil
}

func (p *Projects) IsCommitteeMember(_ context.Context, _, committeeID, email string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.members[memberKey(committeeID, email)], nil
}

func (p *Projects) AddCommitteeMember(_ context.Context, _, committeeID string, member services.CommitteeMember) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := memberKey(committeeID, member.Email)
	p.addCalls[key]++
	if p.AddErr != nil {
		if err := p.AddErr(committeeID, member.Email); err != nil {
			return err
		}
	}
	p.members[key] = true
	return nil
}

// SeedMember marks an email as already belonging to a committee.
func (p *Projects) SeedMember(committeeID, email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[memberKey(committeeID, email)] = true
}

// AddCalls returns how many times AddCommitteeMember was invoked for the pair.
func (p *Projects) AddCalls(committeeID, email string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addCalls[memberKey(committeeID, email)]
}

func memberKey(committeeID, email string) string {
	return committeeID + ":" + email
}

// Slack is a fake chat workspace. Invited users get deterministic ids
// (U0001, U0002, ...) in invitation order.
type Slack struct {
	mu       sync.Mutex
	users    map[string]string   // email -> user id
	channels map[string][]string // channel -> user ids
	next     int

	// InviteErr, when set, is consulted before each invitation.
	InviteErr func(email string) error
}

// NewSlack creates an empty fake workspace.
func NewSlack() *Slack {
	return &Slack{
		users:    make(map[string]string),
		channels: make(map[string][]string),
	}
}

func (s *Slack) InviteToWorkspace(_ context.Context, contact *types.Contact, _ string, channels []string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InviteErr != nil {
		if err := s.InviteErr(contact.Email); err != nil {
			return "", err
		}
	}
	userID, ok := s.users[contact.Email]
	if !ok {
		s.next++
		userID = fmt.Sprintf("U%04d", s.next)
		s.users[contact.Email] = userID
	}
	for _, ch := range channels {
		s.channels[ch] = append(s.channels[ch], userID)
	}
	return userID, nil
}

// UserID returns the workspace id assigned to an email, if any.
func (s *Slack) UserID(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.users[email]
	return id, ok
}

// ChannelMembers returns the user ids added to a channel.
func (s *Slack) ChannelMembers(channel string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.channels[channel]...)
}

// SentEmail records one delivered welcome email.
type SentEmail struct {
	To            string
	ProjectName   string
	CommitteeName string
	SentAt        time.Time
}

// Email is a fake mailer that records every delivery.
type Email struct {
	mu   sync.Mutex
	sent []SentEmail

	// SendErr, when set, is consulted before each send.
	SendErr func(email string) error
}

// NewEmail creates an empty fake mailer.
func NewEmail() *Email {
	return &Email{}
}

func (e *Email) SendWelcomeEmail(_ context.Context, contact *types.Contact, project *types.ProjectInfo, committeeName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.SendErr != nil {
		if err := e.SendErr(contact.Email); err != nil {
			return err
		}
	}
	e.sent = append(e.sent, SentEmail{
		To:            contact.Email,
		ProjectName:   project.Name,
		CommitteeName: committeeName,
		SentAt:        time.Now().UTC(),
	})
	return nil
}

// Sent returns a copy of the delivery log.
func (e *Email) Sent() []SentEmail {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SentEmail(nil), e.sent...)
}

// LogoUpdate records one landscape pull request.
type LogoUpdate struct {
	ProjectSlug  string
	Organization string
	LogoURL      string
	PRURL        string
}

// Landscape is a fake landscape publisher.
type Landscape struct {
	mu      sync.Mutex
	updates []LogoUpdate
	next    int

	// UpdateErr, when set, is consulted before each update.
	UpdateErr func(organization string) error
}

// NewLandscape creates an empty fake publisher.
func NewLandscape() *Landscape {
	return &Landscape{}
}

func (l *Landscape) UpdateMemberLogo(_ context.Context, projectSlug, organization, logoURL string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.UpdateErr != nil {
		if err := l.UpdateErr(organization); err != nil {
			return "", err
		}
	}
	l.next++
	prURL := fmt.Sprintf("https://github.com/%s/landscape/pull/%d", projectSlug, 1000+l.next)
	l.updates = append(l.updates, LogoUpdate{
		ProjectSlug:  projectSlug,
		Organization: organization,
		LogoURL:      logoURL,
		PRURL:        prURL,
	})
	return prURL, nil
}

// Updates returns a copy of the recorded landscape updates.
func (l *Landscape) Updates() []LogoUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogoUpdate(nil), l.updates...)
}
