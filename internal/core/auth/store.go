// Package auth holds the signed-in user and drives login and logout through
// an identity provider.
package auth

import (
	"sync"

	"github.com/hay-kot/kpi/internal/core/identity"
)

// State is a snapshot of the authentication state.
type State struct {
	User    *identity.User
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Store holds the current user. It starts in the loading state until the
// first Set or Clear.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewStore creates a store in the loading state with no user.
func NewStore() *Store {
	return &Store{
		state:     State{Loading: true},
		listeners: make(map[int]func(State)),
	}
}

// State returns the current state. The user is copied.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Set stores user as the signed-in user and ends loading.
func (s *Store) Set(user identity.User) {
	s.update(func(st *State) {
		st.User = &user
		st.Loading = false
	})
}

// Clear signs the user out locally and ends loading.
func (s *Store) Clear() {
	s.update(func(st *State) {
		st.User = nil
		st.Loading = false
	})
}

// SetLoading toggles the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading })
}

// Subscribe registers fn for every state change and returns a function that
// removes it. The returned function is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshotLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for id := range s.nextID {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		u.Groups = append([]string(nil), st.User.Groups...)
		st.User = &u
	}
	return st
}
