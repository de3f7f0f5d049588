// Filmrec - Telegram Movie Recommendation Bot
// Copyright 2026 Adi Prasetya (aprasetya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aprasetya/filmrec

// Package session tracks per-chat conversation state.
//
// The store is an explicitly-owned dependency injected into the controller,
// not ambient process state, and it is bounded: entries expire after a TTL
// of inactivity and the least recently used entry is evicted when the
// capacity limit is reached. Sessions are in-memory only; surviving a
// process restart is a non-goal.
package session

import (
	"sync"
	"time"

	"github.com/aprasetya/filmrec/internal/metrics"
)

// State is the conversation position of a chat.
type State int

const (
	// StateAwaitingGenre expects one of the known genre names. It is both
	// the initial state and the re-entry state after a finished cycle.
	StateAwaitingGenre State = iota

	// StateAwaitingYear expects a release year.
	StateAwaitingYear

	// StateAwaitingContinue expects the continue or finish literal.
	StateAwaitingContinue
)

// String returns the state name for logging and metrics labels.
func (s State) String() string {
	switch s {
	case StateAwaitingGenre:
		return "awaiting_genre"
	case StateAwaitingYear:
		return "awaiting_year"
	case StateAwaitingContinue:
		return "awaiting_continue"
	default:
		return "unknown"
	}
}

// Session is one chat's conversation state.
type Session struct {
	State State

	// Genre holds the chosen genre once StateAwaitingYear is reached;
	// cleared when a new cycle starts.
	Genre string
}

// entry is a node in the LRU list.
type entry struct {
	chatID    int64
	session   Session
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// Store is a thread-safe session store with TTL expiry and LRU eviction.
// A doubly-linked list keeps recency order; head.next is the most recently
// used entry, tail.prev the least.
type Store struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[int64]*entry
	head  *entry
	tail  *entry

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewStore creates a session store with the given capacity and idle TTL.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	s := &Store{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[int64]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
		now:      time.Now,
	}
	s.head.next = s.tail
	s.tail.prev = s.head

	return s
}

// Get returns the session for chatID. An expired session is removed and
// reported as absent.
func (s *Store) Get(chatID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[chatID]
	if !ok {
		return Session{}, false
	}

	if s.now().After(e.expiresAt) {
		s.removeLocked(e)
		metrics.SessionEvictions.WithLabelValues("ttl").Inc()
		return Session{}, false
	}

	s.touchLocked(e)
	return e.session, true
}

// Put stores the session for chatID, refreshing its TTL. When the store is
// at capacity the least recently used entry is evicted first.
func (s *Store) Put(chatID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[chatID]; ok {
		e.session = sess
		e.expiresAt = s.now().Add(s.ttl)
		s.touchLocked(e)
		return
	}

	if len(s.items) >= s.capacity {
		s.evictOldestLocked()
	}

	e := &entry{
		chatID:    chatID,
		session:   sess,
		expiresAt: s.now().Add(s.ttl),
	}
	s.items[chatID] = e
	s.pushFrontLocked(e)
	metrics.ActiveSessions.Set(float64(len(s.items)))
}

// Delete removes the session for chatID, if present.
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[chatID]; ok {
		s.removeLocked(e)
	}
}

// Len returns the number of stored sessions, including any not yet swept
// expired entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// evictOldestLocked drops the least recently used entry. Expired entries at
// the tail are preferred, but the bound holds regardless.
func (s *Store) evictOldestLocked() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}

	reason := "capacity"
	if s.now().After(oldest.expiresAt) {
		reason = "ttl"
	}
	s.removeLocked(oldest)
	metrics.SessionEvictions.WithLabelValues(reason).Inc()
}

// touchLocked moves an entry to the front of the recency list.
func (s *Store) touchLocked(e *entry) {
	s.unlinkLocked(e)
	s.pushFrontLocked(e)
}

// removeLocked unlinks an entry and drops it from the map.
func (s *Store) removeLocked(e *entry) {
	s.unlinkLocked(e)
	delete(s.items, e.chatID)
	metrics.ActiveSessions.Set(float64(len(s.items)))
}

func (s *Store) unlinkLocked(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *Store) pushFrontLocked(e *entry) {
	e.prev = s.head
	e.next = s.head.next
	s.head.next.prev = e
	s.head.next = e
}
