package onboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lfx-eng/onboard/internal/services"
	"github.com/lfx-eng/onboard/internal/types"
)

// Assigner adds a contact to a committee with a membership pre-check and a
// bounded exponential-backoff retry. The membership check is an idempotent
// read: a contact already on the committee short-circuits to already_member
// without a write. A check failure consumes the same attempt budget as an add
// failure.
type Assigner struct {
	projects    services.ProjectService
	maxAttempts int
	baseDelay   time.Duration

	// timer overrides the real backoff timer in tests. nil uses wall-clock
	// sleeps.
	timer backoff.Timer
}

// NewAssigner creates an assigner with the given retry budget. maxAttempts
// counts attempts total, not retries: 3 attempts means 2 retries with delays
// of baseDelay and 2*baseDelay.
func NewAssigner(projects services.ProjectService, maxAttempts int, baseDelay time.Duration) *Assigner {
	return &Assigner{projects: projects, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// AssignResult is the outcome of one committee assignment.
type AssignResult struct {
	Status      types.StepStatus // success, already_member, or failed
	CommitteeID string
	Attempts    int

	// RetriesExhausted marks a failure that consumed the full attempt budget,
	// as opposed to one cut short by context cancellation.
	RetriesExhausted bool

	Err error
}

// Assign runs the check-then-add sequence with retries.
func (a *Assigner) Assign(ctx context.Context, projectID, committeeID string, contact *types.Contact) AssignResult {
	res := AssignResult{CommitteeID: committeeID}

	op := func() error {
		res.Attempts++
		member, err := a.projects.IsCommitteeMember(ctx, projectID, committeeID, contact.Email)
		if err != nil {
			return fmt.Errorf("membership check: %w", err)
		}
		if member {
			res.Status = types.StepAlreadyMember
			return nil
		}
		err = a.projects.AddCommitteeMember(ctx, projectID, committeeID, services.CommitteeMember{
			Name:         contact.FullName(),
			Email:        contact.Email,
			Organization: contact.Organization,
			Title:        contact.Title,
			Role:         "voting_rep",
			JoinDate:     time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		res.Status = types.StepSuccess
		return nil
	}

	// Jitter off so the delay schedule is exactly base, 2*base, ...
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Hour
	bo.MaxElapsedTime = 0
	bo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(a.maxAttempts-1)), ctx)
	if err := backoff.RetryNotifyWithTimer(op, policy, nil, a.timer); err != nil {
		res.Status = types.StepFailed
		res.RetriesExhausted = ctx.Err() == nil && res.Attempts >= a.maxAttempts
		res.Err = err
	}
	return res
}
