package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/queue"
)

// Editable field names accepted by ApplyField.
const (
	FieldEmail  = "email"
	FieldStatus = "status"
)

var (
	ErrEditInProgress = errors.New("an edit session is already open for this lead")
	ErrSessionClosed  = errors.New("edit session is closed")
	ErrCommitInFlight = errors.New("a commit is in flight for this session")
	ErrUnknownSession = errors.New("unknown edit session")
)

type sessionState int

const (
	sessionEditing sessionState = iota
	sessionCommitting
	sessionClosed
)

// EditSession is one borrow of a lead: an immutable original kept as the
// rollback point, and a working draft the operator mutates. Authority over
// the record returns to the cache when the session resolves.
type EditSession struct {
	ID     string
	leadID string

	original entity.Lead
	working  entity.Lead
	state    sessionState
	emailErr string
}

func (s *EditSession) LeadID() string {
	return s.leadID
}

// Working returns the current draft.
func (s *EditSession) Working() entity.Lead {
	return s.working
}

// EmailError returns the message pinned to the email field, empty when the
// field is clean.
func (s *EditSession) EmailError() string {
	return s.emailErr
}

func (s *EditSession) Open() bool {
	return s.state == sessionEditing
}

// EditLeadUseCase runs the optimistic edit cycle for one lead at a time:
// snapshot, speculative apply, remote confirm or exact rollback. The
// one-session-per-lead guard doubles as the one-in-flight-commit guard,
// because a committing session stays registered until it resolves.
type EditLeadUseCase struct {
	Cache  *cache.Store
	Remote RemoteStore
	Queue  EventPublisherInterface

	mu       sync.Mutex
	sessions map[string]*EditSession // keyed by lead id
	rollback map[string]entity.Lead  // baselines with the rollback flag raised
}

func NewEditLeadUseCase(store *cache.Store, remote RemoteStore, producer EventPublisherInterface) *EditLeadUseCase {
	return &EditLeadUseCase{
		Cache:    store,
		Remote:   remote,
		Queue:    producer,
		sessions: make(map[string]*EditSession),
		rollback: make(map[string]entity.Lead),
	}
}

// BeginEdit captures the original snapshot and a working copy. It is
// rejected while another session for the same lead is open or committing.
func (uc *EditLeadUseCase) BeginEdit(leadID string) (*EditSession, error) {
	lead, ok := uc.Cache.Lead(leadID)
	if !ok {
		return nil, &NotFoundError{Resource: "lead", ID: leadID}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, busy := uc.sessions[leadID]; busy {
		return nil, ErrEditInProgress
	}

	// Resuming an edit withdraws the pending rollback offer; the snapshot
	// taken now is the only baseline this session can restore.
	delete(uc.rollback, leadID)

	session := &EditSession{
		ID:       uuid.New().String(),
		leadID:   leadID,
		original: lead,
		working:  lead,
		state:    sessionEditing,
	}
	uc.sessions[leadID] = session
	return session, nil
}

// ApplyField mutates the working copy only. Anything other than email or
// status is a programming error, not operator feedback. Writing to email
// clears a stale email validation error.
func (uc *EditLeadUseCase) ApplyField(session *EditSession, field, value string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.checkOpenLocked(session); err != nil {
		return err
	}

	switch field {
	case FieldEmail:
		session.working.Email = value
		session.emailErr = ""
	case FieldStatus:
		status := entity.LeadStatus(value)
		if !status.Valid() {
			return ValidationError{Field: FieldStatus, Message: fmt.Sprintf("unknown status %q", value)}
		}
		session.working.Status = status
	default:
		return fmt.Errorf("field %q is not editable", field)
	}
	return nil
}

// Cancel discards the working copy and closes the session with no cache
// effect. A session whose commit is already out cannot be cancelled; its
// continuation still runs.
func (uc *EditLeadUseCase) Cancel(session *EditSession) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.checkOpenLocked(session); err != nil {
		return err
	}

	session.state = sessionClosed
	delete(uc.sessions, session.leadID)
	return nil
}

// Commit validates the draft locally, publishes it into the cache as the
// visible record (optimistic apply) and issues the remote update. On
// confirmation the server record becomes both the cache state and the new
// rollback baseline. On any remote failure the cache is restored to the
// original, exactly, and the rollback flag is raised; an email-shaped
// rejection additionally reopens the session with the error on the field.
func (uc *EditLeadUseCase) Commit(ctx context.Context, session *EditSession) (*entity.Lead, error) {
	uc.mu.Lock()
	if err := uc.checkOpenLocked(session); err != nil {
		uc.mu.Unlock()
		return nil, err
	}

	if !entity.IsValidEmail(session.working.Email) {
		session.emailErr = "Please enter a valid email address"
		uc.mu.Unlock()
		return nil, ValidationError{Field: FieldEmail, Message: "Please enter a valid email address"}
	}

	session.emailErr = ""
	session.state = sessionCommitting
	working := session.working
	original := session.original
	uc.mu.Unlock()

	// Optimistic apply: the draft is the visible record from here until the
	// remote store settles the outcome.
	uc.Cache.SetLead(working)

	input := UpdateLeadInput{Email: &working.Email, Status: &working.Status}
	confirmed, err := uc.Remote.UpdateLead(ctx, session.leadID, input)
	if err != nil {
		uc.resolveFailure(session, original, err)
		return nil, err
	}

	// Server is authoritative: whatever it normalized wins, and becomes the
	// baseline a later rollback would restore.
	uc.Cache.SetLead(*confirmed)

	uc.mu.Lock()
	session.original = *confirmed
	session.working = *confirmed
	session.state = sessionClosed
	delete(uc.sessions, session.leadID)
	// The confirmed record is the new baseline; a rollback raised by an
	// earlier failed attempt must not be able to overwrite it.
	delete(uc.rollback, session.leadID)
	uc.mu.Unlock()

	uc.publish(queue.LeadEventPayload{
		Event:      queue.EventLeadUpdated,
		LeadID:     confirmed.ID,
		LeadName:   confirmed.Name,
		Email:      confirmed.Email,
		Status:     string(confirmed.Status),
		OccurredAt: time.Now(),
	})
	return confirmed, nil
}

// RollbackAvailable reports whether an automatic rollback for the lead is
// waiting to be surfaced to the operator.
func (uc *EditLeadUseCase) RollbackAvailable(leadID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.rollback[leadID]
	return ok
}

// Undo restores the original snapshot a second time and clears the flag. It
// is idempotent with the automatic rollback; without a raised flag it is a
// no-op and reports false.
func (uc *EditLeadUseCase) Undo(leadID string) bool {
	uc.mu.Lock()
	original, ok := uc.rollback[leadID]
	if ok {
		delete(uc.rollback, leadID)
	}
	uc.mu.Unlock()

	if !ok {
		return false
	}
	uc.Cache.SetLead(original)
	return true
}

func (uc *EditLeadUseCase) resolveFailure(session *EditSession, original entity.Lead, cause error) {
	// Exact rollback: the record that was visible immediately before the
	// commit, not the rejected draft.
	uc.Cache.SetLead(original)

	uc.mu.Lock()
	session.working = original
	uc.rollback[session.leadID] = original

	if IsEmailRejection(cause) {
		// The store called out the email shape: hand the session back for
		// correction with the error pinned to the field.
		session.state = sessionEditing
		session.emailErr = cause.Error()
	} else {
		session.state = sessionClosed
		delete(uc.sessions, session.leadID)
	}
	uc.mu.Unlock()

	uc.publish(queue.LeadEventPayload{
		Event:      queue.EventLeadRollback,
		LeadID:     session.leadID,
		LeadName:   original.Name,
		Reason:     cause.Error(),
		OccurredAt: time.Now(),
	})
}

func (uc *EditLeadUseCase) checkOpenLocked(session *EditSession) error {
	if session == nil {
		return ErrUnknownSession
	}
	switch session.state {
	case sessionCommitting:
		return ErrCommitInFlight
	case sessionClosed:
		return ErrSessionClosed
	}
	if uc.sessions[session.leadID] != session {
		return ErrUnknownSession
	}
	return nil
}

func (uc *EditLeadUseCase) publish(payload queue.LeadEventPayload) {
	if uc.Queue == nil {
		return
	}
	if err := uc.Queue.PublishLeadEvent(context.Background(), payload); err != nil {
		log.Printf("warn: lead event %s not published: %v", payload.Event, err)
	}
}
