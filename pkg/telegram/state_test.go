package telegram

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSessionStoreDefaultsToIdle(t *testing.T) {
	ss := NewSessionStore()

	s := ss.Get(100)
	assert.Equal(t, StateIdle, s.State)
}

func TestSessionStoreSetGet(t *testing.T) {
	ss := NewSessionStore()

	ss.Set(100, Session{
		State:         StateAwaitingOperationSum,
		OperationType: "РАСХОД",
	})

	s := ss.Get(100)
	assert.Equal(t, StateAwaitingOperationSum, s.State)
	assert.Equal(t, "РАСХОД", s.OperationType)

	// other chats are unaffected
	assert.Equal(t, StateIdle, ss.Get(200).State)
}

func TestSessionStoreClear(t *testing.T) {
	ss := NewSessionStore()

	ss.Set(100, Session{
		State:        StateAwaitingOperationDate,
		OperationSum: decimal.NewFromInt(150),
	})
	ss.Clear(100)

	s := ss.Get(100)
	assert.Equal(t, StateIdle, s.State)
	assert.True(t, s.OperationSum.IsZero(), "partial data must be dropped with the session")
}
