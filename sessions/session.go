// Package sessions holds the per-user merge session state machine and the
// registry of active sessions.
package sessions

import (
	"fmt"
	"sync"

	apperror "github.com/vidmerge/vidmerge-bot/errors"
	"github.com/vidmerge/vidmerge-bot/models"
)

type State string

const (
	StateCollecting       State = "collecting"
	StateAwaitingFilename State = "awaiting_filename"
	StateMerging          State = "merging"
	StateUploading        State = "uploading"
	StateDone             State = "done"
	StateCancelled        State = "cancelled"
	StateFailed           State = "failed"
)

func (s State) String() string { return string(s) }

// IsTerminal reports whether the session is finished and due for retirement.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}

// IsRunning reports whether a pipeline run owns the session. A running
// session accepts no accumulation intents and cannot be cancelled.
func (s State) IsRunning() bool {
	return s == StateMerging || s == StateUploading
}

type Limits struct {
	MaxFiles     int
	MaxMergeSize uint64
}

// Session accumulates one user's file selection and walks the merge state
// machine. All methods are safe for concurrent use; a mutex serializes
// intents for the same user.
type Session struct {
	userID int64
	limits Limits

	mu         sync.Mutex
	items      []models.FileRef
	state      State
	outputName string
}

func NewSession(userID int64, limits Limits) *Session {
	return &Session{
		userID: userID,
		limits: limits,
		state:  StateCollecting,
	}
}

func (s *Session) UserID() int64 { return s.userID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Items returns the selection in insertion order. Merge order equals
// selection order.
func (s *Session) Items() []models.FileRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FileRef(nil), s.items...)
}

func (s *Session) TotalSize() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSizeLocked()
}

func (s *Session) totalSizeLocked() uint64 {
	var total uint64
	for _, ref := range s.items {
		total += ref.SizeBytes
	}
	return total
}

// AddFile appends a selection while collecting. Cap violations reject the
// file and leave the session untouched.
func (s *Session) AddFile(ref models.FileRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		return apperror.ErrInvalidState
	}
	if len(s.items) >= s.limits.MaxFiles {
		return apperror.ErrLimitExceeded
	}
	if s.limits.MaxMergeSize > 0 && s.totalSizeLocked()+ref.SizeBytes > s.limits.MaxMergeSize {
		return apperror.ErrLimitExceeded
	}

	s.items = append(s.items, ref)
	return nil
}

// MarkDone moves the session to the filename prompt. An empty selection is
// rejected with no state change.
func (s *Session) MarkDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		return apperror.ErrInvalidState
	}
	if len(s.items) == 0 {
		return apperror.ErrEmptySelection
	}

	s.state = StateAwaitingFilename
	return nil
}

// SetOutputName records the chosen filename and starts the merge. An empty
// name synthesizes the default merged_{userId}.
func (s *Session) SetOutputName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingFilename {
		return apperror.ErrInvalidState
	}

	if name == "" {
		name = fmt.Sprintf("merged_%d", s.userID)
	}
	s.outputName = name
	s.state = StateMerging
	return nil
}

// BeginMerge is the /merge shortcut: it collapses MarkDone plus
// SetOutputName for a session still collecting.
func (s *Session) BeginMerge(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		return apperror.ErrInvalidState
	}
	if len(s.items) == 0 {
		return apperror.ErrEmptySelection
	}

	if name == "" {
		name = fmt.Sprintf("merged_%d", s.userID)
	}
	s.outputName = name
	s.state = StateMerging
	return nil
}

func (s *Session) OutputName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputName
}

// StartUploading marks the concatenation as finished.
func (s *Session) StartUploading() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateMerging {
		return apperror.ErrInvalidState
	}
	s.state = StateUploading
	return nil
}

// Complete terminates a successful run.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDone
}

// Fail terminates the session after a collaborator failure.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
}

// Cancel honors a cancel intent before the merge starts. Once a run owns the
// session there is no cancellation point and the intent is rejected.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting && s.state != StateAwaitingFilename {
		return apperror.ErrInvalidState
	}
	s.state = StateCancelled
	s.items = nil
	return nil
}
