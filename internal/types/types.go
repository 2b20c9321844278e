// Package types defines core data structures for the onboarding engine.
package types

import (
	"fmt"
	"time"
)

// StepStatus is the state of a single onboarding sub-step (committee, slack, email).
type StepStatus string

// Sub-step status constants
const (
	StepPending       StepStatus = "pending"
	StepSuccess       StepStatus = "success"
	StepAlreadyMember StepStatus = "already_member"
	StepSkipped       StepStatus = "skipped"
	StepFailed        StepStatus = "failed"
)

// IsValid checks if the step status value is valid
func (s StepStatus) IsValid() bool {
	switch s {
	case StepPending, StepSuccess, StepAlreadyMember, StepSkipped, StepFailed:
		return true
	}
	return false
}

// Settled reports whether the sub-step has reached a final state.
func (s StepStatus) Settled() bool {
	return s != StepPending && s != ""
}

// OverallStatus is the derived completion state of a contact, computed from its
// three sub-statuses. It is never set independently; see DeriveOverall.
type OverallStatus string

// Overall status constants
const (
	OverallPending   OverallStatus = "pending"
	OverallPartial   OverallStatus = "partial"
	OverallCompleted OverallStatus = "completed"
	OverallFailed    OverallStatus = "failed"
)

// Terminal reports whether the overall status ends the workflow for a contact.
// Partial is terminal too: no automatic remediation is attempted.
func (s OverallStatus) Terminal() bool {
	return s == OverallCompleted || s == OverallFailed
}

// DeriveOverall computes the overall status from the three sub-statuses.
//
// Rules, in order:
//
//  1. pending while no sub-step has been attempted
//  2. completed iff the committee step landed (success or already_member) AND at
//     least one communication channel (slack or email) succeeded
//  3. failed iff both communication channels failed — completion requires a
//     channel, so the contact can never recover regardless of the committee
//     outcome
//  4. partial otherwise (some progress, not all failed, not all succeeded)
//
// A skipped committee (no committee mapping for the contact type) therefore
// resolves to partial while a channel survives, failed once both channels have
// failed. The function is pure and idempotent: identical inputs always yield
// identical output.
func DeriveOverall(committee, slack, email StepStatus) OverallStatus {
	if !committee.Settled() && !slack.Settled() && !email.Settled() {
		return OverallPending
	}
	committeeOK := committee == StepSuccess || committee == StepAlreadyMember
	if committeeOK && (slack == StepSuccess || email == StepSuccess) {
		return OverallCompleted
	}
	if slack == StepFailed && email == StepFailed {
		return OverallFailed
	}
	return OverallPartial
}

// SessionStatus is the lifecycle state of an onboarding session.
type SessionStatus string

// Session status constants
const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// ContactType classifies a member contact and selects the committee the contact
// is assigned to.
type ContactType string

// Contact type constants
const (
	ContactPrimary   ContactType = "primary"
	ContactMarketing ContactType = "marketing"
	ContactTechnical ContactType = "technical"
)

// IsValid checks if the contact type value is valid
func (t ContactType) IsValid() bool {
	switch t {
	case ContactPrimary, ContactMarketing, ContactTechnical:
		return true
	}
	return false
}

// EventType identifies which sub-step an audit event belongs to.
type EventType string

// Event type constants
const (
	EventCommittee EventType = "committee"
	EventSlack     EventType = "slack"
	EventEmail     EventType = "email"
)

// Contact is an individual representative of a member organization, as returned
// by the member directory service.
type Contact struct {
	ContactID    string      `json:"contact_id"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Title        string      `json:"title,omitempty"`
	ContactType  ContactType `json:"contact_type"`
	Organization string      `json:"organization,omitempty"`
}

// FullName returns the contact's display name.
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Validate checks that the contact carries the fields the workflow requires.
func (c *Contact) Validate() error {
	if c.ContactID == "" {
		return fmt.Errorf("contact_id is required")
	}
	if c.Email == "" {
		return fmt.Errorf("email is required for contact %s", c.ContactID)
	}
	if !c.ContactType.IsValid() {
		return fmt.Errorf("invalid contact type for %s: %q", c.Email, c.ContactType)
	}
	return nil
}

// Committee is a project governance group a contact may join.
type Committee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// MemberInfo describes a member organization in the directory.
type MemberInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"`
}

// ProjectInfo describes a project looked up by slug.
type ProjectInfo struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Session represents one onboarding run for an (organization, project) pair.
// Contact counts are derived: they are recomputed by scanning the session's
// contacts, never maintained incrementally.
type Session struct {
	ID                 int64         `json:"id"`
	OrganizationName   string        `json:"organization_name"`
	ProjectSlug        string        `json:"project_slug"`
	MemberID           string        `json:"member_id"`
	ProjectID          string        `json:"project_id"`
	StartedAt          time.Time     `json:"started_at"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	Status             SessionStatus `json:"status"`
	TotalContacts      int           `json:"total_contacts"`
	SuccessfulContacts int           `json:"successful_contacts"`
	FailedContacts     int           `json:"failed_contacts"`
}

// ContactRecord is the durable per-contact onboarding row. OverallStatus is
// always DeriveOverall of the three sub-statuses, recomputed on every write.
type ContactRecord struct {
	ID              int64         `json:"id"`
	SessionID       int64         `json:"session_id"`
	ContactID       string        `json:"contact_id"`
	Email           string        `json:"email"`
	FirstName       string        `json:"first_name,omitempty"`
	LastName        string        `json:"last_name,omitempty"`
	Title           string        `json:"title,omitempty"`
	ContactType     ContactType   `json:"contact_type"`
	CommitteeStatus StepStatus    `json:"committee_status"`
	CommitteeID     string        `json:"committee_id,omitempty"`
	SlackStatus     StepStatus    `json:"slack_status"`
	SlackUserID     string        `json:"slack_user_id,omitempty"`
	EmailStatus     StepStatus    `json:"email_status"`
	OverallStatus   OverallStatus `json:"overall_status"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

// StatusFor returns the recorded status of one sub-step.
func (r *ContactRecord) StatusFor(kind EventType) StepStatus {
	switch kind {
	case EventCommittee:
		return r.CommitteeStatus
	case EventSlack:
		return r.SlackStatus
	case EventEmail:
		return r.EmailStatus
	}
	return ""
}

// Event is an immutable append-only audit entry for one sub-status transition.
// Events are never updated or deleted.
type Event struct {
	ID        int64      `json:"id"`
	ContactID int64      `json:"contact_id"` // ContactRecord.ID, not the external contact id
	Type      EventType  `json:"event_type"`
	Status    StepStatus `json:"event_status"`
	Details   string     `json:"event_details,omitempty"` // opaque JSON payload
	CreatedAt time.Time  `json:"created_at"`
}

// TypeSummary aggregates per-contact-type results for the session report.
type TypeSummary struct {
	ContactType ContactType `json:"contact_type"`
	Total       int         `json:"total"`
	Successful  int         `json:"successful"`
}

// SessionStats holds the recomputed contact counts for a session.
type SessionStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Report is the final session report: the persisted session row, every contact
// row in (type, email) order, and the per-type rollup.
type Report struct {
	Session     *Session         `json:"session"`
	Contacts    []*ContactRecord `json:"contacts"`
	TypeSummary []TypeSummary    `json:"type_summary"`
}
