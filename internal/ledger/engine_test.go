package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// EngineSuite runs the ledger engine against the in-memory stores, which
// implement the same compare-and-set and append contracts as the database
// backed ones.
type EngineSuite struct {
	suite.Suite
	accounts    *repositories.MemoryAccountRepository
	entries     *repositories.MemoryTransactionRepository
	transfers   *repositories.MemoryTransferRepository
	idempotency *repositories.MemoryIdempotencyRepository
	engine      *Engine
	userID      uuid.UUID
}

func (s *EngineSuite) SetupTest() {
	s.accounts = repositories.NewMemoryAccountRepository()
	s.entries = repositories.NewMemoryTransactionRepository()
	s.transfers = repositories.NewMemoryTransferRepository()
	s.idempotency = repositories.NewMemoryIdempotencyRepository()
	s.engine = NewEngine(s.accounts, s.entries, s.transfers, s.idempotency,
		NewGuard(2*time.Second), Config{})
	s.userID = uuid.New()
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) openAccount(number, kind string, balance money.Money) *models.Account {
	account := &models.Account{
		UserID:  s.userID,
		Number:  number,
		Kind:    kind,
		Balance: balance,
		Status:  models.AccountStatusActive,
	}
	if kind == models.AccountKindCreditCard {
		limit := money.FromMinorUnits(5000000)
		account.CreditLimit = &limit
	}
	s.Require().NoError(s.accounts.Create(account))
	return account
}

func (s *EngineSuite) balanceOf(id uuid.UUID) money.Money {
	account, err := s.accounts.GetByID(id)
	s.Require().NoError(err)
	return account.Balance
}

func (s *EngineSuite) TestDeposit() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	receipt, err := s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(150000),
		Description:   "opening deposit",
	})
	s.NoError(err)
	s.Equal(OpDeposit, receipt.Operation)
	s.Equal(money.FromMinorUnits(150000), receipt.BalanceAfter)
	s.False(receipt.Replayed)
	s.Equal(money.FromMinorUnits(150000), s.balanceOf(account.ID))

	entry, err := s.entries.GetByID(receipt.TransactionID)
	s.NoError(err)
	s.Equal(int64(1), entry.Sequence)
	s.Equal(models.DirectionCredit, entry.Direction)
	s.Equal(money.Zero, entry.BalanceBefore)
	s.Equal(money.FromMinorUnits(150000), entry.BalanceAfter)
}

func (s *EngineSuite) TestDeposit_InvalidAmount() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	_, err := s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.Zero,
		Description:   "nothing",
	})
	s.Equal(KindInvalidAmount, KindOf(err))

	// Nothing was written
	count, err := s.entries.CountByAccount(account.ID)
	s.NoError(err)
	s.Zero(count)
}

func (s *EngineSuite) TestDeposit_AccountNotFound() {
	_, err := s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: "2099999999",
		Amount:        money.FromMinorUnits(100),
		Description:   "ghost",
	})
	s.Equal(KindAccountNotFound, KindOf(err))
}

func (s *EngineSuite) TestDeposit_ClosedAccount() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)
	s.Require().NoError(account.Close())
	s.Require().NoError(s.accounts.Update(account))

	_, err := s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(100),
		Description:   "too late",
	})
	s.Equal(KindAccountClosed, KindOf(err))
}

func (s *EngineSuite) TestWithdraw() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(100000))

	receipt, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(40000),
		Description:   "rent",
	})
	s.NoError(err)
	s.Equal(money.FromMinorUnits(60000), receipt.BalanceAfter)
	s.Equal(money.FromMinorUnits(60000), s.balanceOf(account.ID))
}

func (s *EngineSuite) TestWithdraw_InsufficientFunds() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(5000))

	_, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(5001),
		Description:   "too much",
	})
	s.Equal(KindInsufficientFunds, KindOf(err))
	s.Equal(money.FromMinorUnits(5000), s.balanceOf(account.ID))

	count, err := s.entries.CountByAccount(account.ID)
	s.NoError(err)
	s.Zero(count)
}

func (s *EngineSuite) TestWithdraw_ExactBalance() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(5000))

	receipt, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(5000),
		Description:   "empty it",
	})
	s.NoError(err)
	s.True(receipt.BalanceAfter.IsZero())
}

func (s *EngineSuite) TestWithdraw_OverdraftAllowed() {
	account := s.openAccount("1011111111", models.AccountKindCurrent, money.FromMinorUnits(1000))
	account.OverdraftAllowed = true
	s.Require().NoError(s.accounts.Update(account))

	receipt, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(3000),
		Description:   "overdraw",
	})
	s.NoError(err)
	s.Equal(money.FromMinorUnits(-2000), receipt.BalanceAfter)
}

func (s *EngineSuite) TestApply_Dispatch() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	receipt, err := s.engine.Apply(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(5000),
		Description:   "via apply",
	})
	s.NoError(err)
	s.Equal(OpDeposit, receipt.Operation)

	receipt, err = s.engine.Apply(context.Background(), &WithdrawRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(2000),
		Description:   "via apply",
	})
	s.NoError(err)
	s.Equal(OpWithdraw, receipt.Operation)
	s.Equal(money.FromMinorUnits(3000), receipt.BalanceAfter)
}

func (s *EngineSuite) TestFundFixedDeposit() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(500000))

	receipt, err := s.engine.FundFixedDeposit(context.Background(), FundFixedDepositRequest{
		FromAccountNumber:  account.Number,
		Amount:             money.FromMinorUnits(300000),
		FixedDepositNumber: "FD-20260831-0001",
		Description:        "Fixed deposit FD-20260831-0001 opened",
		IdempotencyKey:     "fd-open-FD-20260831-0001",
	})
	s.NoError(err)
	s.Equal(OpFundFixedDeposit, receipt.Operation)
	s.Equal(money.FromMinorUnits(200000), receipt.BalanceAfter)
	s.Equal("FD-20260831-0001", receipt.Reference)

	entry, err := s.entries.GetByID(receipt.TransactionID)
	s.NoError(err)
	s.Equal(models.DirectionDebit, entry.Direction)
	s.Equal(models.CategoryFixedDeposit, entry.Category)

	// Replaying the key returns the original receipt without a second debit
	replayed, err := s.engine.FundFixedDeposit(context.Background(), FundFixedDepositRequest{
		FromAccountNumber:  account.Number,
		Amount:             money.FromMinorUnits(300000),
		FixedDepositNumber: "FD-20260831-0001",
		Description:        "Fixed deposit FD-20260831-0001 opened",
		IdempotencyKey:     "fd-open-FD-20260831-0001",
	})
	s.NoError(err)
	s.True(replayed.Replayed)
	s.Equal(money.FromMinorUnits(200000), s.balanceOf(account.ID))
}

func (s *EngineSuite) TestFundFixedDeposit_InsufficientFunds() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(1000))

	_, err := s.engine.FundFixedDeposit(context.Background(), FundFixedDepositRequest{
		FromAccountNumber:  account.Number,
		Amount:             money.FromMinorUnits(300000),
		FixedDepositNumber: "FD-20260831-0002",
		Description:        "principal exceeds balance",
	})
	s.Equal(KindInsufficientFunds, KindOf(err))
	s.Equal(money.FromMinorUnits(1000), s.balanceOf(account.ID))
}

func (s *EngineSuite) TestCreditCardSpendAndRepay() {
	card := s.openAccount("4011111111", models.AccountKindCreditCard, money.Zero)

	// Spend increases the drawn amount
	receipt, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: card.Number,
		Amount:        money.FromMinorUnits(200000),
		Description:   "groceries",
		Category:      models.CategoryCardSpend,
	})
	s.NoError(err)
	s.Equal(money.FromMinorUnits(200000), receipt.BalanceAfter)

	// Spending beyond the limit is refused
	_, err = s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: card.Number,
		Amount:        money.FromMinorUnits(4900000),
		Description:   "yacht",
		Category:      models.CategoryCardSpend,
	})
	s.Equal(KindInsufficientFunds, KindOf(err))

	// Repayment reduces the drawn amount
	receipt, err = s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: card.Number,
		Amount:        money.FromMinorUnits(150000),
		Description:   "card payment",
	})
	s.NoError(err)
	s.Equal(money.FromMinorUnits(50000), receipt.BalanceAfter)

	// Paying more than is drawn is refused
	_, err = s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: card.Number,
		Amount:        money.FromMinorUnits(60000),
		Description:   "overpayment",
	})
	s.Equal(KindInvalidRequest, KindOf(err))
	s.Equal(money.FromMinorUnits(50000), s.balanceOf(card.ID))
}

func (s *EngineSuite) TestTransfer() {
	from := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(100000))
	to := s.openAccount("1022222222", models.AccountKindCurrent, money.FromMinorUnits(20000))

	receipt, err := s.engine.Transfer(context.Background(), TransferRequest{
		FromAccountNumber: from.Number,
		ToAccountNumber:   to.Number,
		Amount:            money.FromMinorUnits(30000),
		Description:       "rent",
	})
	s.NoError(err)
	s.Equal(money.FromMinorUnits(70000), receipt.BalanceAfter)
	s.Equal(money.FromMinorUnits(70000), s.balanceOf(from.ID))
	s.Equal(money.FromMinorUnits(50000), s.balanceOf(to.ID))

	// Both legs share the transfer reference
	legs, err := s.entries.GetByReference(receipt.Reference)
	s.NoError(err)
	s.Len(legs, 2)

	s.Require().NotNil(receipt.TransferID)
	record, err := s.transfers.FindByID(*receipt.TransferID)
	s.NoError(err)
	s.Equal(models.TransferStatusCompleted, record.Status)
	s.NotNil(record.DebitTransactionID)
	s.NotNil(record.CreditTransactionID)
}

func (s *EngineSuite) TestTransfer_InsufficientFunds() {
	from := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(1000))
	to := s.openAccount("1022222222", models.AccountKindCurrent, money.Zero)

	_, err := s.engine.Transfer(context.Background(), TransferRequest{
		FromAccountNumber: from.Number,
		ToAccountNumber:   to.Number,
		Amount:            money.FromMinorUnits(5000),
		Description:       "too much",
	})
	s.Equal(KindInsufficientFunds, KindOf(err))

	// Neither account moved and no ledger entries exist
	s.Equal(money.FromMinorUnits(1000), s.balanceOf(from.ID))
	s.True(s.balanceOf(to.ID).IsZero())

	fromCount, _ := s.entries.CountByAccount(from.ID)
	toCount, _ := s.entries.CountByAccount(to.ID)
	s.Zero(fromCount)
	s.Zero(toCount)

	transfers, total, err := s.transfers.ListByAccount(from.ID, 0, 10)
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Equal(models.TransferStatusFailed, transfers[0].Status)
}

func (s *EngineSuite) TestTransfer_CreditLegFailureCompensates() {
	from := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(100000))
	// Credit leg into a card with nothing drawn fails as an overpayment,
	// which exercises the compensation path.
	card := s.openAccount("4022222222", models.AccountKindCreditCard, money.Zero)

	_, err := s.engine.Transfer(context.Background(), TransferRequest{
		FromAccountNumber: from.Number,
		ToAccountNumber:   card.Number,
		Amount:            money.FromMinorUnits(30000),
		Description:       "card payment",
	})
	s.Error(err)

	// The debited amount came back
	s.Equal(money.FromMinorUnits(100000), s.balanceOf(from.ID))
	s.True(s.balanceOf(card.ID).IsZero())

	// Debit and reversal both remain in the log
	entries, _, listErr := s.entries.ListByAccount(models.TransactionFilters{
		AccountID: from.ID, Limit: 10,
	})
	s.NoError(listErr)
	s.Len(entries, 2)
	s.Equal(models.CategoryReversal, entries[0].Category)

	// Account still reconciles
	report, recErr := s.engine.Reconcile(context.Background(), from.Number)
	s.NoError(recErr)
	s.True(report.Balanced)
}

func (s *EngineSuite) TestIdempotentReplay() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	req := DepositRequest{
		AccountNumber:  account.Number,
		Amount:         money.FromMinorUnits(10000),
		Description:    "salary",
		IdempotencyKey: "pay-2026-08",
	}

	first, err := s.engine.Deposit(context.Background(), req)
	s.NoError(err)
	s.False(first.Replayed)

	second, err := s.engine.Deposit(context.Background(), req)
	s.NoError(err)
	s.True(second.Replayed)
	s.Equal(first.Reference, second.Reference)
	s.Equal(first.TransactionID, second.TransactionID)

	// Applied exactly once
	s.Equal(money.FromMinorUnits(10000), s.balanceOf(account.ID))
	count, _ := s.entries.CountByAccount(account.ID)
	s.Equal(int64(1), count)
}

func (s *EngineSuite) TestIdempotencyKeyAcrossOperations() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(50000))

	_, err := s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber:  account.Number,
		Amount:         money.FromMinorUnits(10000),
		Description:    "salary",
		IdempotencyKey: "key-1",
	})
	s.NoError(err)

	_, err = s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber:  account.Number,
		Amount:         money.FromMinorUnits(10000),
		Description:    "atm",
		IdempotencyKey: "key-1",
	})
	s.Equal(KindConflict, KindOf(err))
}

func (s *EngineSuite) TestConcurrentDeposits() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	const workers = 25
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = s.engine.Deposit(context.Background(), DepositRequest{
				AccountNumber: account.Number,
				Amount:        money.FromMinorUnits(1000),
				Description:   "concurrent deposit",
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}
	s.Equal(money.FromMinorUnits(workers*1000), s.balanceOf(account.ID))

	// Sequences are dense and unique
	entries, total, err := s.entries.ListByAccount(models.TransactionFilters{
		AccountID: account.ID, Limit: workers,
	})
	s.NoError(err)
	s.Equal(int64(workers), total)
	seen := make(map[int64]bool)
	for _, entry := range entries {
		s.False(seen[entry.Sequence], "duplicate sequence %d", entry.Sequence)
		seen[entry.Sequence] = true
		s.GreaterOrEqual(entry.Sequence, int64(1))
		s.LessOrEqual(entry.Sequence, int64(workers))
	}
}

func (s *EngineSuite) TestOpposedConcurrentTransfers() {
	a := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(100000))
	b := s.openAccount("2022222222", models.AccountKindSavings, money.FromMinorUnits(100000))

	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.engine.Transfer(context.Background(), TransferRequest{
				FromAccountNumber: a.Number,
				ToAccountNumber:   b.Number,
				Amount:            money.FromMinorUnits(100),
				Description:       "ping",
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.engine.Transfer(context.Background(), TransferRequest{
				FromAccountNumber: b.Number,
				ToAccountNumber:   a.Number,
				Amount:            money.FromMinorUnits(100),
				Description:       "pong",
			})
		}()
	}
	wg.Wait()

	// Money is conserved regardless of interleaving
	total, err := s.balanceOf(a.ID).Add(s.balanceOf(b.ID))
	s.NoError(err)
	s.Equal(money.FromMinorUnits(200000), total)

	// And both accounts still reconcile
	for _, number := range []string{a.Number, b.Number} {
		report, err := s.engine.Reconcile(context.Background(), number)
		s.NoError(err)
		s.True(report.Balanced)
	}
}

func (s *EngineSuite) TestBusyWhenLockHeld() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	guard := NewGuard(50 * time.Millisecond)
	engine := NewEngine(s.accounts, s.entries, s.transfers, s.idempotency, guard, Config{})

	release, err := guard.Acquire(context.Background(), account.ID)
	s.Require().NoError(err)
	defer release()

	_, err = engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(100),
		Description:   "blocked",
	})
	s.Equal(KindBusy, KindOf(err))
}

func (s *EngineSuite) TestReconcile() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	ops := []money.Money{10000, 2500, 40000}
	for _, amount := range ops {
		_, err := s.engine.Deposit(context.Background(), DepositRequest{
			AccountNumber: account.Number,
			Amount:        amount,
			Description:   "deposit",
		})
		s.Require().NoError(err)
	}
	_, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(12500),
		Description:   "withdrawal",
	})
	s.Require().NoError(err)

	report, err := s.engine.Reconcile(context.Background(), account.Number)
	s.NoError(err)
	s.True(report.Balanced)
	s.Equal(money.FromMinorUnits(40000), report.ComputedBalance)
	s.Equal(money.FromMinorUnits(52500), report.Credits)
	s.Equal(money.FromMinorUnits(12500), report.Debits)
	s.Equal(int64(4), report.EntryCount)
}

func (s *EngineSuite) TestReconcile_CreditCardSignConvention() {
	card := s.openAccount("4011111111", models.AccountKindCreditCard, money.Zero)

	_, err := s.engine.Withdraw(context.Background(), WithdrawRequest{
		AccountNumber: card.Number,
		Amount:        money.FromMinorUnits(30000),
		Description:   "spend",
		Category:      models.CategoryCardSpend,
	})
	s.Require().NoError(err)
	_, err = s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: card.Number,
		Amount:        money.FromMinorUnits(10000),
		Description:   "payment",
	})
	s.Require().NoError(err)

	report, err := s.engine.Reconcile(context.Background(), card.Number)
	s.NoError(err)
	s.True(report.Balanced)
	s.Equal(money.FromMinorUnits(20000), report.ComputedBalance)
}

func (s *EngineSuite) TestReconcile_DetectsMismatch() {
	account := s.openAccount("2011111111", models.AccountKindSavings, money.Zero)

	_, err := s.engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(10000),
		Description:   "deposit",
	})
	s.Require().NoError(err)

	// Corrupt the balance behind the engine's back
	s.Require().NoError(s.accounts.CompareAndSetBalance(account.ID,
		money.FromMinorUnits(10000), money.FromMinorUnits(99999)))

	report, err := s.engine.Reconcile(context.Background(), account.Number)
	s.NoError(err)
	s.False(report.Balanced)
	s.Equal(money.FromMinorUnits(99999), report.StoredBalance)
	s.Equal(money.FromMinorUnits(10000), report.ComputedBalance)
}

// flakyEntryLog wraps the in-memory log and fails the next append, which
// simulates the store dying between the balance write and the log write.
type flakyEntryLog struct {
	repositories.TransactionRepositoryInterface
	mu       sync.Mutex
	failNext bool
}

func (f *flakyEntryLog) Append(entry *models.Transaction) error {
	f.mu.Lock()
	shouldFail := f.failNext
	f.failNext = false
	f.mu.Unlock()

	if shouldFail {
		return errors.New("injected append failure")
	}
	return f.TransactionRepositoryInterface.Append(entry)
}

func (s *EngineSuite) TestAppendFailureRestoresBalance() {
	flaky := &flakyEntryLog{TransactionRepositoryInterface: s.entries}
	engine := NewEngine(s.accounts, flaky, s.transfers, s.idempotency,
		NewGuard(time.Second), Config{})

	account := s.openAccount("2011111111", models.AccountKindSavings, money.FromMinorUnits(50000))

	flaky.mu.Lock()
	flaky.failNext = true
	flaky.mu.Unlock()

	_, err := engine.Deposit(context.Background(), DepositRequest{
		AccountNumber: account.Number,
		Amount:        money.FromMinorUnits(10000),
		Description:   "doomed",
	})
	s.Equal(KindUnexpected, KindOf(err))

	// Balance was restored and the account still reconciles
	s.Equal(money.FromMinorUnits(50000), s.balanceOf(account.ID))
	report, recErr := engine.Reconcile(context.Background(), account.Number)
	s.NoError(recErr)
	s.True(report.Balanced)
}
