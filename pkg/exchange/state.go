package exchange

import "sync"

// State identifies the active conversation flow for a chat.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingCurrencyName State = "awaiting_currency_name"
	StateAwaitingCurrencyRate State = "awaiting_currency_rate"
	StateAwaitingConvertName  State = "awaiting_convert_name"
	StateAwaitingAmount       State = "awaiting_amount"
)

// Session holds the active flow and the currency collected so far.
type Session struct {
	State State

	// currency code collected by the first step of either flow
	Currency string
}

// SessionStore manages per-chat conversation sessions in memory.
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
