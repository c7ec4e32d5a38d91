package sessions

import "sync"

// Store maps each user to at most one active session. Creation is
// insert-if-absent so concurrent intents from one user always land on the
// same selection list.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	limits   Limits
}

func NewStore(limits Limits) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		limits:   limits,
	}
}

func (s *Store) GetOrCreate(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := NewSession(userID, s.limits)
	s.sessions[userID] = sess
	return sess
}

func (s *Store) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Retire drops the session; the next accumulation intent starts fresh.
func (s *Store) Retire(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Active returns the number of live sessions.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
