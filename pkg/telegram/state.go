package telegram

import (
	"sync"

	"github.com/shopspring/decimal"
)

// State identifies the active conversation flow for a chat.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingLogin         State = "awaiting_login"
	StateAwaitingOperationType State = "awaiting_operation_type"
	StateAwaitingOperationSum  State = "awaiting_operation_sum"
	StateAwaitingOperationDate State = "awaiting_operation_date"
	StateAwaitingCurrency      State = "awaiting_currency"
	StateAwaitingBudget        State = "awaiting_budget"
)

// Session holds the active flow and the partial data collected so far.
// Fields are only meaningful for the flow named by State.
type Session struct {
	State State

	// add-operation flow
	OperationType string
	OperationSum  decimal.Decimal
}

// SessionStore manages per-chat conversation sessions. Sessions live in
// process memory only; a restart drops all in-flight flows.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewSessionStore creates a new session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]Session),
	}
}

// Get returns the session for a chat, or an idle one.
func (ss *SessionStore) Get(chatID int64) Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if s, exists := ss.sessions[chatID]; exists {
		return s
	}
	return Session{State: StateIdle}
}

// Set stores the session for a chat.
func (ss *SessionStore) Set(chatID int64, s Session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.sessions[chatID] = s
}

// Clear resets the chat to the idle state.
func (ss *SessionStore) Clear(chatID int64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	delete(ss.sessions, chatID)
}
