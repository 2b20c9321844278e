package onboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lfx-eng/onboard/internal/storage"
	"github.com/lfx-eng/onboard/internal/types"
)

// contactRow pairs a contact with its persisted row id.
type contactRow struct {
	dbID    int64
	contact *types.Contact
}

// processContact drives one contact through the workflow: committee
// assignment first, then the Slack invitation and welcome email concurrently.
// Every outcome, success or failure, ends in a transactional status+event
// write; nothing here aborts the batch.
func (o *Orchestrator) processContact(ctx context.Context, r *run, row contactRow) ContactResult {
	contact := row.contact
	o.reporter.ContactStarted(contact)

	res := ContactResult{Contact: contact}
	committeeName := CommitteeName(contact.ContactType)

	// Step 1: committee assignment. A missing mapping is skipped outright, no
	// retry. Committee status is always written before the channel fan-out
	// starts.
	if committeeID, ok := r.committees.Lookup(contact.ContactType); ok {
		ar := o.assigner.Assign(ctx, r.project.ID, committeeID, contact)
		for i := 1; i < ar.Attempts; i++ {
			o.metrics.RetryAttempt(ctx)
		}
		detail := &storage.StatusDetail{CommitteeID: committeeID}
		if ar.Err != nil {
			detail.Error = ar.Err.Error()
			detail.RetriesExhausted = ar.RetriesExhausted
		}
		res.Committee = o.persistStep(ctx, row, types.EventCommittee, ar.Status, detail)
	} else {
		detail := &storage.StatusDetail{Reason: "committee_not_found"}
		res.Committee = o.persistStep(ctx, row, types.EventCommittee, types.StepSkipped, detail)
	}

	// Step 2: chat invitation and welcome email, concurrently. The two depend
	// only on the contact and the resolved committee name. Neither is
	// retried: a single channel failure still allows completion through the
	// other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		channels := SlackChannels(contact.ContactType, r.project.Slug)
		userID, err := o.slack.InviteToWorkspace(gctx, contact, r.org, channels, committeeName)
		status := types.StepSuccess
		detail := &storage.StatusDetail{SlackUserID: userID}
		if err != nil {
			status = types.StepFailed
			detail = &storage.StatusDetail{Error: err.Error()}
		}
		res.Slack = o.persistStep(gctx, row, types.EventSlack, status, detail)
		return nil
	})
	g.Go(func() error {
		err := o.email.SendWelcomeEmail(gctx, contact, r.project, committeeName)
		status := types.StepSuccess
		var detail *storage.StatusDetail
		if err != nil {
			status = types.StepFailed
			detail = &storage.StatusDetail{Error: err.Error()}
		}
		res.Email = o.persistStep(gctx, row, types.EventEmail, status, detail)
		return nil
	})
	_ = g.Wait()

	// The store recomputed overall_status on every write; read it back so the
	// result matches the persisted row.
	if rec, err := o.store.GetContact(ctx, row.dbID); err == nil {
		res.Overall = rec.OverallStatus
	} else {
		res.Overall = types.DeriveOverall(res.Committee, res.Slack, res.Email)
	}

	o.metrics.ContactProcessed(ctx, string(res.Overall))
	o.reporter.ContactFinished(contact, res.Overall)
	return res
}

// persistStep writes one sub-status plus its audit event. A persistence
// failure downgrades the step to failed: the report must never claim more
// than the store recorded.
func (o *Orchestrator) persistStep(ctx context.Context, row contactRow, kind types.EventType, status types.StepStatus, detail *storage.StatusDetail) types.StepStatus {
	if err := o.store.UpdateContactStatus(ctx, row.dbID, kind, status, detail); err != nil {
		o.reporter.Info("warning: persisting %s status for %s: %v", kind, row.contact.Email, err)
		status = types.StepFailed
	}
	detailText := ""
	if detail != nil {
		switch {
		case detail.Error != "":
			detailText = detail.Error
		case detail.Reason != "":
			detailText = detail.Reason
		case detail.SlackUserID != "":
			detailText = detail.SlackUserID
		case detail.CommitteeID != "":
			detailText = detail.CommitteeID
		}
	}
	o.reporter.Step(row.contact, kind, status, detailText)
	return status
}
