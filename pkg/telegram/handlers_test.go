package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kopilka/pkg/db"
	"kopilka/pkg/ledger"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmkteam/embedlog"
)

type fakeRepo struct {
	users      map[int64]*db.User
	logins     map[string]bool
	operations []db.Operation
	budgets    map[time.Time]decimal.Decimal

	addOperationErr error
	upsertBudgetErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:   make(map[int64]*db.User),
		logins:  make(map[string]bool),
		budgets: make(map[time.Time]decimal.Decimal),
	}
}

func (f *fakeRepo) UserByChatID(ctx context.Context, chatID int64) (*db.User, error) {
	return f.users[chatID], nil
}

func (f *fakeRepo) AddUser(ctx context.Context, user *db.User) (*db.User, error) {
	if f.logins[user.Name] {
		return nil, db.ErrUniqueViolation
	}
	f.logins[user.Name] = true
	f.users[user.ChatID] = user
	return user, nil
}

func (f *fakeRepo) AddOperation(ctx context.Context, op *db.Operation) (*db.Operation, error) {
	if f.addOperationErr != nil {
		return nil, f.addOperationErr
	}
	f.operations = append(f.operations, *op)
	return op, nil
}

func (f *fakeRepo) UpsertBudget(ctx context.Context, b *db.Budget) error {
	if f.upsertBudgetErr != nil {
		return f.upsertBudgetErr
	}
	f.budgets[b.Month] = b.Amount
	return nil
}

func (f *fakeRepo) OperationsByMonth(ctx context.Context, chatID int64, month time.Time) ([]db.Operation, error) {
	return f.operations, nil
}

func (f *fakeRepo) ExpensesTotalByMonth(ctx context.Context, chatID int64, month time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, op := range f.operations {
		if op.TypeOperation == db.OperationExpense {
			total = total.Add(op.Sum)
		}
	}
	return total, nil
}

func (f *fakeRepo) BudgetByMonth(ctx context.Context, chatID int64, month time.Time) (*db.Budget, error) {
	amount, ok := f.budgets[month]
	if !ok {
		return nil, nil
	}
	return &db.Budget{ChatID: chatID, Month: month, Amount: amount}, nil
}

type fakeRates struct {
	rate decimal.Decimal
	ok   bool
}

func (f fakeRates) Rate(ctx context.Context, currency string) (decimal.Decimal, bool) {
	return f.rate, f.ok
}

// newTestBot wires a Bot against a fake repo, a fake rate source and a
// local Telegram API stub.
func newTestBot(t *testing.T, repo ledger.Repo, rs RateSource) *Bot {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"kopilka","username":"kopilka_bot"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":100,"type":"private"},"text":"ok"}}`))
	}))
	t.Cleanup(srv.Close)

	sl := embedlog.NewLogger(true, false)
	b, err := New(context.Background(), Config{Token: "123:test"}, ledger.NewManager(repo, sl), rs, sl,
		bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	return b
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: chatID, Username: "tester"},
			Chat: models.Chat{ID: chatID, Type: "private"},
			Text: text,
		},
	}
}

func TestStepLoginDuplicateStaysInFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	_, err := b.ledger.Register(ctx, 100, "alice1")
	require.NoError(t, err)

	b.sessions.Set(200, Session{State: StateAwaitingLogin})
	b.handleMessage(ctx, b.api, textUpdate(200, "alice1"))

	assert.Equal(t, StateAwaitingLogin, b.sessions.Get(200).State, "duplicate login must keep the registration flow open")
	assert.Nil(t, repo.users[200])
}

func TestStepLoginSuccessClearsSession(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingLogin})
	b.handleMessage(ctx, b.api, textUpdate(100, "алиса1"))

	assert.Equal(t, StateIdle, b.sessions.Get(100).State)
	require.NotNil(t, repo.users[100])
	assert.Equal(t, "алиса1", repo.users[100].Name)
}

func TestStepLoginInvalidStaysInFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingLogin})
	b.handleMessage(ctx, b.api, textUpdate(100, "a!"))

	assert.Equal(t, StateAwaitingLogin, b.sessions.Get(100).State)
	assert.Nil(t, repo.users[100])
}

func TestAddOperationFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingOperationType})

	b.handleMessage(ctx, b.api, textUpdate(100, "РАСХОД"))
	assert.Equal(t, StateAwaitingOperationSum, b.sessions.Get(100).State)

	b.handleMessage(ctx, b.api, textUpdate(100, "150,00"))
	assert.Equal(t, StateAwaitingOperationDate, b.sessions.Get(100).State)

	b.handleMessage(ctx, b.api, textUpdate(100, "2024-03-05"))
	assert.Equal(t, StateIdle, b.sessions.Get(100).State)

	require.Len(t, repo.operations, 1)
	op := repo.operations[0]
	assert.Equal(t, int64(100), op.ChatID)
	assert.Equal(t, db.OperationExpense, op.TypeOperation)
	assert.Equal(t, "150.00", op.Sum.StringFixed(2))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), op.Date)
}

func TestStepOperationTypeRejectsFreeText(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingOperationType})
	b.handleMessage(ctx, b.api, textUpdate(100, "что-то еще"))

	assert.Equal(t, StateAwaitingOperationType, b.sessions.Get(100).State)
}

func TestStepOperationDateInvalidNoInsert(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{
		State:         StateAwaitingOperationDate,
		OperationType: db.OperationExpense,
		OperationSum:  decimal.NewFromInt(150),
	})
	b.handleMessage(ctx, b.api, textUpdate(100, "2024-13-40"))

	assert.Empty(t, repo.operations, "invalid date must not insert a row")

	s := b.sessions.Get(100)
	assert.Equal(t, StateAwaitingOperationDate, s.State, "invalid date re-prompts in the same state")
	assert.Equal(t, db.OperationExpense, s.OperationType, "collected data must survive the re-prompt")
}

func TestStepOperationDateInsertFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.addOperationErr = errors.New("connection refused")
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{
		State:         StateAwaitingOperationDate,
		OperationType: db.OperationExpense,
		OperationSum:  decimal.NewFromInt(150),
	})
	b.handleMessage(ctx, b.api, textUpdate(100, "2024-03-05"))

	assert.Empty(t, repo.operations)
	assert.Equal(t, StateIdle, b.sessions.Get(100).State, "failed insert still ends the flow")
}

func TestStepBudgetCancelWord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingBudget})
	b.handleMessage(ctx, b.api, textUpdate(100, "отмена"))

	assert.Equal(t, StateIdle, b.sessions.Get(100).State)
	assert.Empty(t, repo.budgets, "cancellation must not write a budget")
}

func TestStepBudgetSaves(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingBudget})
	b.handleMessage(ctx, b.api, textUpdate(100, "1000"))

	assert.Equal(t, StateIdle, b.sessions.Get(100).State)

	month := ledger.MonthStart(time.Now())
	amount, ok := repo.budgets[month]
	require.True(t, ok)
	assert.Equal(t, "1000.00", amount.StringFixed(2))
}

func TestStepBudgetWriteFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.upsertBudgetErr = errors.New("connection refused")
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingBudget})
	b.handleMessage(ctx, b.api, textUpdate(100, "1000"))

	assert.Equal(t, StateIdle, b.sessions.Get(100).State, "failed write still ends the flow")
	assert.Empty(t, repo.budgets)
}

func TestStepCurrencyUnknownStaysInFlow(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, newFakeRepo(), fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingCurrency})
	b.handleMessage(ctx, b.api, textUpdate(100, "GBP"))

	assert.Equal(t, StateAwaitingCurrency, b.sessions.Get(100).State)
}

func TestStepCurrencyRateUnavailableClearsSession(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, newFakeRepo(), fakeRates{ok: false})

	b.sessions.Set(100, Session{State: StateAwaitingCurrency})
	b.handleMessage(ctx, b.api, textUpdate(100, "USD"))

	assert.Equal(t, StateIdle, b.sessions.Get(100).State, "summary ends the flow even on rate fallback")
}

func TestProcessUpdateHandlesSynchronously(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	b := newTestBot(t, repo, fakeRates{ok: true, rate: decimal.NewFromInt(1)})

	b.sessions.Set(100, Session{State: StateAwaitingLogin})
	b.api.ProcessUpdate(ctx, textUpdate(100, "alice1"))

	// the handler must have finished before ProcessUpdate returned
	assert.Equal(t, StateIdle, b.sessions.Get(100).State)
	require.NotNil(t, repo.users[100])
	assert.Equal(t, "alice1", repo.users[100].Name)
}
