package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lfx-eng/onboard/internal/storage"
	"github.com/lfx-eng/onboard/internal/types"
)

func TestCreateAndGetSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "Acme Corp", "cncf", "org-001", "proj-001")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess, err := store.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.OrganizationName != "Acme Corp" || sess.ProjectSlug != "cncf" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.Status != types.SessionInProgress {
		t.Errorf("new session status = %s, want in_progress", sess.Status)
	}
	if sess.CompletedAt != nil {
		t.Error("new session must not have completed_at")
	}
	if sess.StartedAt.IsZero() {
		t.Error("started_at not set")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSession(context.Background(), 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSessionRequiresOrgAndSlug(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateSession(context.Background(), "", "cncf", "m", "p"); err == nil {
		t.Error("expected error for empty organization name")
	}
	if _, err := store.CreateSession(context.Background(), "Acme Corp", "", "m", "p"); err == nil {
		t.Error("expected error for empty project slug")
	}
}

func TestAddContactDefaults(t *testing.T) {
	store := newTestStore(t)
	_, contactID := newTestSession(t, store)
	ctx := context.Background()

	rec, err := store.GetContact(ctx, contactID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	for _, got := range []types.StepStatus{rec.CommitteeStatus, rec.SlackStatus, rec.EmailStatus} {
		if got != types.StepPending {
			t.Errorf("new contact sub-status = %s, want pending", got)
		}
	}
	if rec.OverallStatus != types.OverallPending {
		t.Errorf("new contact overall = %s, want pending", rec.OverallStatus)
	}
	if rec.CompletedAt != nil {
		t.Error("new contact must not have completed_at")
	}
}

func TestAddContactRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	sessionID, _ := newTestSession(t, store)

	_, err := store.AddContact(context.Background(), sessionID, &types.Contact{
		ContactID: "cnt-bad",
		// no email
		ContactType: types.ContactPrimary,
	})
	if err == nil {
		t.Fatal("expected validation error for contact without email")
	}
}

func TestUpdateContactStatusWritesEvent(t *testing.T) {
	store := newTestStore(t)
	_, contactID := newTestSession(t, store)
	ctx := context.Background()

	err := store.UpdateContactStatus(ctx, contactID, types.EventCommittee, types.StepSuccess,
		&storage.StatusDetail{CommitteeID: "comm-001"})
	if err != nil {
		t.Fatalf("UpdateContactStatus failed: %v", err)
	}

	rec, err := store.GetContact(ctx, contactID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if rec.CommitteeStatus != types.StepSuccess {
		t.Errorf("committee_status = %s, want success", rec.CommitteeStatus)
	}
	if rec.CommitteeID != "comm-001" {
		t.Errorf("committee_id = %q, want comm-001", rec.CommitteeID)
	}
	if rec.OverallStatus != types.OverallPartial {
		t.Errorf("overall = %s, want partial (channels still pending)", rec.OverallStatus)
	}

	events, err := store.GetContactEvents(ctx, contactID, 0)
	if err != nil {
		t.Fatalf("GetContactEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1 per status update", len(events))
	}
	ev := events[0]
	if ev.Type != types.EventCommittee || ev.Status != types.StepSuccess {
		t.Errorf("unexpected event: %+v", ev)
	}
	if !strings.Contains(ev.Details, "comm-001") {
		t.Errorf("event details %q missing committee id", ev.Details)
	}
}

func TestUpdateContactStatusDerivesOverall(t *testing.T) {
	store := newTestStore(t)
	_, contactID := newTestSession(t, store)
	ctx := context.Background()

	steps := []struct {
		kind    types.EventType
		status  types.StepStatus
		overall types.OverallStatus
	}{
		{types.EventCommittee, types.StepAlreadyMember, types.OverallPartial},
		{types.EventSlack, types.StepFailed, types.OverallPartial},
		{types.EventEmail, types.StepSuccess, types.OverallCompleted},
	}
	for _, step := range steps {
		if err := store.UpdateContactStatus(ctx, contactID, step.kind, step.status, nil); err != nil {
			t.Fatalf("UpdateContactStatus(%s) failed: %v", step.kind, err)
		}
		rec, err := store.GetContact(ctx, contactID)
		if err != nil {
			t.Fatalf("GetContact failed: %v", err)
		}
		if rec.OverallStatus != step.overall {
			t.Errorf("after %s=%s: overall = %s, want %s",
				step.kind, step.status, rec.OverallStatus, step.overall)
		}
	}

	// Terminal transition stamps completed_at exactly once.
	rec, err := store.GetContact(ctx, contactID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if rec.CompletedAt == nil {
		t.Fatal("completed contact must have completed_at")
	}
	first := *rec.CompletedAt

	if err := store.UpdateContactStatus(ctx, contactID, types.EventSlack, types.StepSuccess, nil); err != nil {
		t.Fatalf("UpdateContactStatus failed: %v", err)
	}
	rec, err = store.GetContact(ctx, contactID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(first) {
		t.Error("completed_at must not change once set")
	}
}

func TestUpdateContactStatusNotFound(t *testing.T) {
	store := newTestStore(t)
	newTestSession(t, store)

	err := store.UpdateContactStatus(context.Background(), 9999, types.EventSlack, types.StepSuccess, nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// A failed transaction must leave neither the status update nor the event behind.
func TestRunInTxRollsBackStatusAndEvent(t *testing.T) {
	store := newTestStore(t)
	_, contactID := newTestSession(t, store)
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := store.RunInTx(ctx, func(tx storage.Tx) error {
		if err := tx.UpdateContactStatus(ctx, contactID, types.EventCommittee, types.StepSuccess,
			&storage.StatusDetail{CommitteeID: "comm-001"}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunInTx error = %v, want %v", err, wantErr)
	}

	rec, err := store.GetContact(ctx, contactID)
	if err != nil {
		t.Fatalf("GetContact failed: %v", err)
	}
	if rec.CommitteeStatus != types.StepPending {
		t.Errorf("committee_status = %s after rollback, want pending", rec.CommitteeStatus)
	}
	events, err := store.GetContactEvents(ctx, contactID, 0)
	if err != nil {
		t.Fatalf("GetContactEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events after rollback, want 0", len(events))
	}
}

func TestRunInTxCommits(t *testing.T) {
	store := newTestStore(t)
	sessionID, contactID := newTestSession(t, store)
	ctx := context.Background()

	err := store.RunInTx(ctx, func(tx storage.Tx) error {
		if err := tx.UpdateContactStatus(ctx, contactID, types.EventCommittee, types.StepSuccess, nil); err != nil {
			return err
		}
		// read-your-writes inside the transaction
		rec, err := tx.GetContact(ctx, contactID)
		if err != nil {
			return err
		}
		if rec.CommitteeStatus != types.StepSuccess {
			t.Errorf("in-tx committee_status = %s, want success", rec.CommitteeStatus)
		}
		_, err = tx.AddContact(ctx, sessionID, &types.Contact{
			ContactID:   "cnt-002",
			Email:       "jane.smith@acmecorp.com",
			FirstName:   "Jane",
			LastName:    "Smith",
			ContactType: types.ContactMarketing,
		})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx failed: %v", err)
	}

	stats, err := store.RefreshSessionStats(ctx, sessionID)
	if err != nil {
		t.Fatalf("RefreshSessionStats failed: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
}

func TestRefreshSessionStats(t *testing.T) {
	store := newTestStore(t)
	sessionID, contactID := newTestSession(t, store)
	ctx := context.Background()

	addContact := func(cid, email string, ctype types.ContactType) int64 {
		t.Helper()
		id, err := store.AddContact(ctx, sessionID, &types.Contact{
			ContactID: cid, Email: email, FirstName: "x", LastName: "y", ContactType: ctype,
		})
		if err != nil {
			t.Fatalf("AddContact failed: %v", err)
		}
		return id
	}
	complete := func(id int64) {
		t.Helper()
		for _, step := range []struct {
			kind   types.EventType
			status types.StepStatus
		}{
			{types.EventCommittee, types.StepSuccess},
			{types.EventSlack, types.StepSuccess},
		} {
			if err := store.UpdateContactStatus(ctx, id, step.kind, step.status, nil); err != nil {
				t.Fatalf("UpdateContactStatus failed: %v", err)
			}
		}
	}
	fail := func(id int64) {
		t.Helper()
		for _, kind := range []types.EventType{types.EventCommittee, types.EventSlack, types.EventEmail} {
			if err := store.UpdateContactStatus(ctx, id, kind, types.StepFailed, nil); err != nil {
				t.Fatalf("UpdateContactStatus failed: %v", err)
			}
		}
	}

	complete(contactID)
	complete(addContact("cnt-002", "jane.smith@acmecorp.com", types.ContactMarketing))
	fail(addContact("cnt-003", "bob.johnson@acmecorp.com", types.ContactTechnical))
	addContact("cnt-004", "alice@acmecorp.com", types.ContactTechnical) // still pending

	stats, err := store.RefreshSessionStats(ctx, sessionID)
	if err != nil {
		t.Fatalf("RefreshSessionStats failed: %v", err)
	}
	if stats.Total != 4 || stats.Successful != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want total=4 successful=2 failed=1", stats)
	}

	// The counts are persisted on the session row.
	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.TotalContacts != 4 || sess.SuccessfulContacts != 2 || sess.FailedContacts != 1 {
		t.Errorf("session counts = %d/%d/%d, want 4/2/1",
			sess.TotalContacts, sess.SuccessfulContacts, sess.FailedContacts)
	}
}

func TestCompleteSession(t *testing.T) {
	store := newTestStore(t)
	sessionID, _ := newTestSession(t, store)
	ctx := context.Background()

	if err := store.CompleteSession(ctx, sessionID); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.Status != types.SessionCompleted || sess.CompletedAt == nil {
		t.Errorf("session not completed: %+v", sess)
	}

	// Idempotent: completing again keeps the original timestamp.
	first := *sess.CompletedAt
	if err := store.CompleteSession(ctx, sessionID); err != nil {
		t.Fatalf("second CompleteSession failed: %v", err)
	}
	sess, err = store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !sess.CompletedAt.Equal(first) {
		t.Error("completed_at changed on repeat completion")
	}

	if err := store.CompleteSession(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestGetSessionReport(t *testing.T) {
	store := newTestStore(t)
	sessionID, primaryID := newTestSession(t, store)
	ctx := context.Background()

	techID, err := store.AddContact(ctx, sessionID, &types.Contact{
		ContactID: "cnt-003", Email: "bob.johnson@acmecorp.com",
		FirstName: "Bob", LastName: "Johnson", ContactType: types.ContactTechnical,
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	if _, err := store.AddContact(ctx, sessionID, &types.Contact{
		ContactID: "cnt-002", Email: "jane.smith@acmecorp.com",
		FirstName: "Jane", LastName: "Smith", ContactType: types.ContactMarketing,
	}); err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	for _, step := range []struct {
		kind   types.EventType
		status types.StepStatus
	}{
		{types.EventCommittee, types.StepSuccess},
		{types.EventEmail, types.StepSuccess},
	} {
		if err := store.UpdateContactStatus(ctx, primaryID, step.kind, step.status, nil); err != nil {
			t.Fatalf("UpdateContactStatus failed: %v", err)
		}
	}
	if err := store.UpdateContactStatus(ctx, techID, types.EventCommittee, types.StepSkipped,
		&storage.StatusDetail{Reason: "committee_not_found"}); err != nil {
		t.Fatalf("UpdateContactStatus failed: %v", err)
	}

	if _, err := store.RefreshSessionStats(ctx, sessionID); err != nil {
		t.Fatalf("RefreshSessionStats failed: %v", err)
	}

	report, err := store.GetSessionReport(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSessionReport failed: %v", err)
	}
	if report.Session.ID != sessionID || report.Session.TotalContacts != 3 {
		t.Errorf("unexpected report session: %+v", report.Session)
	}

	// Contacts ordered by (contact_type, email): marketing, primary, technical.
	if len(report.Contacts) != 3 {
		t.Fatalf("got %d contacts, want 3", len(report.Contacts))
	}
	wantOrder := []types.ContactType{types.ContactMarketing, types.ContactPrimary, types.ContactTechnical}
	for i, want := range wantOrder {
		if report.Contacts[i].ContactType != want {
			t.Errorf("contact[%d].type = %s, want %s", i, report.Contacts[i].ContactType, want)
		}
	}

	if len(report.TypeSummary) != 3 {
		t.Fatalf("got %d summary rows, want 3", len(report.TypeSummary))
	}
	for _, ts := range report.TypeSummary {
		wantSuccessful := 0
		if ts.ContactType == types.ContactPrimary {
			wantSuccessful = 1
		}
		if ts.Total != 1 || ts.Successful != wantSuccessful {
			t.Errorf("summary for %s = %+v", ts.ContactType, ts)
		}
	}
}

func TestFindContactsByStatus(t *testing.T) {
	store := newTestStore(t)
	sessionID, contactID := newTestSession(t, store)
	ctx := context.Background()

	if err := store.UpdateContactStatus(ctx, contactID, types.EventCommittee, types.StepSuccess, nil); err != nil {
		t.Fatalf("UpdateContactStatus failed: %v", err)
	}

	partial, err := store.FindContactsByStatus(ctx, sessionID, types.OverallPartial)
	if err != nil {
		t.Fatalf("FindContactsByStatus failed: %v", err)
	}
	if len(partial) != 1 || partial[0].ID != contactID {
		t.Errorf("partial = %+v, want the one updated contact", partial)
	}

	completed, err := store.FindContactsByStatus(ctx, sessionID, types.OverallCompleted)
	if err != nil {
		t.Fatalf("FindContactsByStatus failed: %v", err)
	}
	if len(completed) != 0 {
		t.Errorf("completed = %+v, want none", completed)
	}
}

func TestEventsAreAppendOnlyInOrder(t *testing.T) {
	store := newTestStore(t)
	_, contactID := newTestSession(t, store)
	ctx := context.Background()

	updates := []struct {
		kind   types.EventType
		status types.StepStatus
	}{
		{types.EventCommittee, types.StepSuccess},
		{types.EventSlack, types.StepFailed},
		{types.EventSlack, types.StepSuccess},
		{types.EventEmail, types.StepSuccess},
	}
	for _, u := range updates {
		if err := store.UpdateContactStatus(ctx, contactID, u.kind, u.status, nil); err != nil {
			t.Fatalf("UpdateContactStatus failed: %v", err)
		}
	}

	events, err := store.GetContactEvents(ctx, contactID, 0)
	if err != nil {
		t.Fatalf("GetContactEvents failed: %v", err)
	}
	if len(events) != len(updates) {
		t.Fatalf("got %d events, want %d (one per update, in order)", len(events), len(updates))
	}
	for i, u := range updates {
		if events[i].Type != u.kind || events[i].Status != u.status {
			t.Errorf("event[%d] = %s/%s, want %s/%s",
				i, events[i].Type, events[i].Status, u.kind, u.status)
		}
	}

	limited, err := store.GetContactEvents(ctx, contactID, 2)
	if err != nil {
		t.Fatalf("GetContactEvents with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d events with limit 2", len(limited))
	}
}
