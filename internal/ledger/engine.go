package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"

	"github.com/google/uuid"
)

// DefaultMaxRetries bounds how many times a guarded balance write is retried
// after losing a compare-and-set race.
const DefaultMaxRetries = 5

// MetricsRecorder receives operation outcomes. The prometheus-backed
// implementation lives in the services package; tests use the noop.
type MetricsRecorder interface {
	ObserveOperation(operation, outcome string, seconds float64)
	CountConflictRetry(operation string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, string, float64) {}
func (noopMetrics) CountConflictRetry(string)                {}

// Config tunes an Engine. Zero values fall back to defaults.
type Config struct {
	MaxRetries int
	Logger     *slog.Logger
	Metrics    MetricsRecorder
	Now        func() time.Time
}

// Engine applies deposits, withdrawals and transfers. Every mutation goes
// through the per-account guard, a compare-and-set balance write, and an
// append to the transaction log, in that order.
type Engine struct {
	accounts    repositories.AccountRepositoryInterface
	entries     repositories.TransactionRepositoryInterface
	transfers   repositories.TransferRepositoryInterface
	idempotency repositories.IdempotencyRepositoryInterface
	guard       *Guard

	maxRetries int
	logger     *slog.Logger
	metrics    MetricsRecorder
	now        func() time.Time
}

// NewEngine creates a ledger engine
func NewEngine(
	accounts repositories.AccountRepositoryInterface,
	entries repositories.TransactionRepositoryInterface,
	transfers repositories.TransferRepositoryInterface,
	idempotency repositories.IdempotencyRepositoryInterface,
	guard *Guard,
	cfg Config,
) *Engine {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if guard == nil {
		guard = NewGuard(DefaultLockTimeout)
	}

	return &Engine{
		accounts:    accounts,
		entries:     entries,
		transfers:   transfers,
		idempotency: idempotency,
		guard:       guard,
		maxRetries:  cfg.MaxRetries,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		now:         cfg.Now,
	}
}

// OperationRequest is implemented by the request variants the engine accepts
type OperationRequest interface {
	Validate() error
}

// Apply dispatches a request to the matching operation. Callers that know
// the concrete variant can use the typed methods directly.
func (e *Engine) Apply(ctx context.Context, req OperationRequest) (*Receipt, error) {
	switch r := req.(type) {
	case DepositRequest:
		return e.Deposit(ctx, r)
	case *DepositRequest:
		return e.Deposit(ctx, *r)
	case WithdrawRequest:
		return e.Withdraw(ctx, r)
	case *WithdrawRequest:
		return e.Withdraw(ctx, *r)
	case TransferRequest:
		return e.Transfer(ctx, r)
	case *TransferRequest:
		return e.Transfer(ctx, *r)
	case FundFixedDepositRequest:
		return e.FundFixedDeposit(ctx, r)
	case *FundFixedDepositRequest:
		return e.FundFixedDeposit(ctx, *r)
	default:
		return nil, NewError(KindInvalidRequest, "unknown operation request")
	}
}

// Deposit credits an account and returns the receipt
func (e *Engine) Deposit(ctx context.Context, req DepositRequest) (*Receipt, error) {
	start := e.now()
	receipt, err := e.deposit(ctx, req)
	e.observe(OpDeposit, start, err)
	return receipt, err
}

func (e *Engine) deposit(ctx context.Context, req DepositRequest) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := e.lookupAccount(req.AccountNumber)
	if err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if replayed, err := e.replay(req.IdempotencyKey, OpDeposit); replayed != nil || err != nil {
		return replayed, err
	}

	account, err = e.freshActiveAccount(account.ID)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = models.CategoryDeposit
	}

	entry, balanceAfter, err := e.applyEntry(account, models.DirectionCredit,
		req.Amount, req.Description, category, "")
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Operation:     OpDeposit,
		Reference:     entry.Reference,
		AccountID:     account.ID,
		TransactionID: entry.ID,
		BalanceAfter:  balanceAfter,
		Amount:        req.Amount,
		AppliedAt:     e.now(),
	}
	e.storeReceipt(req.IdempotencyKey, OpDeposit, receipt)
	return receipt, nil
}

// Withdraw debits an account and returns the receipt
func (e *Engine) Withdraw(ctx context.Context, req WithdrawRequest) (*Receipt, error) {
	start := e.now()
	receipt, err := e.withdraw(ctx, req)
	e.observe(OpWithdraw, start, err)
	return receipt, err
}

func (e *Engine) withdraw(ctx context.Context, req WithdrawRequest) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := e.lookupAccount(req.AccountNumber)
	if err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if replayed, err := e.replay(req.IdempotencyKey, OpWithdraw); replayed != nil || err != nil {
		return replayed, err
	}

	account, err = e.freshActiveAccount(account.ID)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = models.CategoryWithdrawal
	}

	entry, balanceAfter, err := e.applyEntry(account, models.DirectionDebit,
		req.Amount, req.Description, category, "")
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Operation:     OpWithdraw,
		Reference:     entry.Reference,
		AccountID:     account.ID,
		TransactionID: entry.ID,
		BalanceAfter:  balanceAfter,
		Amount:        req.Amount,
		AppliedAt:     e.now(),
	}
	e.storeReceipt(req.IdempotencyKey, OpWithdraw, receipt)
	return receipt, nil
}

// FundFixedDeposit debits the funding account for a fixed deposit principal.
// It is a withdrawal with the deposit number as the entry reference, applied
// under the same guard and idempotency rules.
func (e *Engine) FundFixedDeposit(ctx context.Context, req FundFixedDepositRequest) (*Receipt, error) {
	start := e.now()
	receipt, err := e.fundFixedDeposit(ctx, req)
	e.observe(OpFundFixedDeposit, start, err)
	return receipt, err
}

func (e *Engine) fundFixedDeposit(ctx context.Context, req FundFixedDepositRequest) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := e.lookupAccount(req.FromAccountNumber)
	if err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if replayed, err := e.replay(req.IdempotencyKey, OpFundFixedDeposit); replayed != nil || err != nil {
		return replayed, err
	}

	account, err = e.freshActiveAccount(account.ID)
	if err != nil {
		return nil, err
	}

	entry, balanceAfter, err := e.applyEntry(account, models.DirectionDebit,
		req.Amount, req.Description, models.CategoryFixedDeposit, req.FixedDepositNumber)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Operation:     OpFundFixedDeposit,
		Reference:     entry.Reference,
		AccountID:     account.ID,
		TransactionID: entry.ID,
		BalanceAfter:  balanceAfter,
		Amount:        req.Amount,
		AppliedAt:     e.now(),
	}
	e.storeReceipt(req.IdempotencyKey, OpFundFixedDeposit, receipt)
	return receipt, nil
}

// Transfer moves money between two accounts. The debit leg is applied first;
// if the credit leg then fails, the debit is compensated with a reversal
// entry so no money is lost in between.
func (e *Engine) Transfer(ctx context.Context, req TransferRequest) (*Receipt, error) {
	start := e.now()
	receipt, err := e.transfer(ctx, req)
	e.observe(OpTransfer, start, err)
	return receipt, err
}

func (e *Engine) transfer(ctx context.Context, req TransferRequest) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from, err := e.lookupAccount(req.FromAccountNumber)
	if err != nil {
		return nil, err
	}
	to, err := e.lookupAccount(req.ToAccountNumber)
	if err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, from.ID, to.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if replayed, err := e.replay(req.IdempotencyKey, OpTransfer); replayed != nil || err != nil {
		return replayed, err
	}

	from, err = e.freshActiveAccount(from.ID)
	if err != nil {
		return nil, err
	}
	to, err = e.freshActiveAccount(to.ID)
	if err != nil {
		return nil, err
	}

	reference := models.GenerateReference()
	record := &models.Transfer{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        req.Amount,
		Description:   req.Description,
		Reference:     reference,
		Status:        models.TransferStatusPending,
	}
	if err := e.transfers.Create(record); err != nil {
		return nil, WrapError(KindUnexpected, "failed to create transfer record", err)
	}

	debitEntry, _, err := e.applyEntry(from, models.DirectionDebit,
		req.Amount, req.Description, models.CategoryTransfer, reference)
	if err != nil {
		e.failTransfer(record, err)
		return nil, err
	}

	creditEntry, _, err := e.applyEntry(to, models.DirectionCredit,
		req.Amount, req.Description, models.CategoryTransfer, reference)
	if err != nil {
		e.compensateDebit(from.ID, req.Amount, reference)
		e.failTransfer(record, err)
		return nil, err
	}

	record.Complete(debitEntry.ID, creditEntry.ID)
	if err := e.transfers.Update(record); err != nil {
		e.logger.Error("transfer applied but record update failed",
			"transfer_id", record.ID, "reference", reference, "error", err)
	}

	receipt := &Receipt{
		Operation:       OpTransfer,
		Reference:       reference,
		AccountID:       from.ID,
		TransactionID:   debitEntry.ID,
		BalanceAfter:    debitEntry.BalanceAfter,
		Amount:          req.Amount,
		AppliedAt:       e.now(),
		CounterpartyID:  &to.ID,
		CounterpartyTxn: &creditEntry.ID,
		TransferID:      &record.ID,
	}
	e.storeReceipt(req.IdempotencyKey, OpTransfer, receipt)
	return receipt, nil
}

// ReconciliationReport compares an account's stored balance against the
// signed sum of its log entries.
type ReconciliationReport struct {
	AccountID       uuid.UUID   `json:"account_id"`
	AccountNumber   string      `json:"account_number"`
	Kind            string      `json:"kind"`
	StoredBalance   money.Money `json:"stored_balance"`
	ComputedBalance money.Money `json:"computed_balance"`
	Credits         money.Money `json:"credits"`
	Debits          money.Money `json:"debits"`
	EntryCount      int64       `json:"entry_count"`
	Balanced        bool        `json:"balanced"`
	CheckedAt       time.Time   `json:"checked_at"`
}

// Reconcile verifies that the stored balance equals the signed entry sum.
// For credit card accounts the sign convention is inverted because the
// balance tracks the amount drawn.
func (e *Engine) Reconcile(ctx context.Context, accountNumber string) (*ReconciliationReport, error) {
	account, err := e.lookupAccount(accountNumber)
	if err != nil {
		return nil, err
	}

	release, err := e.guard.Acquire(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	account, err = e.accounts.GetByID(account.ID)
	if err != nil {
		return nil, e.classifyLookup(err)
	}

	credits, debits, err := e.entries.SumByAccount(account.ID)
	if err != nil {
		return nil, WrapError(KindUnexpected, "failed to sum entries", err)
	}

	count, err := e.entries.CountByAccount(account.ID)
	if err != nil {
		return nil, WrapError(KindUnexpected, "failed to count entries", err)
	}

	var computed money.Money
	if account.IsCreditCard() {
		computed, err = debits.Sub(credits)
	} else {
		computed, err = credits.Sub(debits)
	}
	if err != nil {
		return nil, WrapError(KindUnexpected, "entry sum overflow", err)
	}

	report := &ReconciliationReport{
		AccountID:       account.ID,
		AccountNumber:   account.Number,
		Kind:            account.Kind,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
		Credits:         credits,
		Debits:          debits,
		EntryCount:      count,
		Balanced:        account.Balance == computed,
		CheckedAt:       e.now(),
	}

	if !report.Balanced {
		e.logger.Error("reconciliation mismatch",
			"account_id", account.ID,
			"account_number", account.Number,
			"stored", account.Balance.String(),
			"computed", computed.String())
	}

	return report, nil
}

// applyEntry performs the CAS-write-then-append sequence for one leg. It
// retries the balance write a bounded number of times when another writer
// got in between, re-reading the account each time.
func (e *Engine) applyEntry(account *models.Account, direction string, amount money.Money, description, category, reference string) (*models.Transaction, money.Money, error) {
	current := account
	operation := category

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		newBalance, err := e.nextBalance(current, direction, amount)
		if err != nil {
			return nil, money.Zero, err
		}

		casErr := e.accounts.CompareAndSetBalance(current.ID, current.Balance, newBalance)
		if casErr == nil {
			entry := &models.Transaction{
				AccountID:     current.ID,
				Direction:     direction,
				Amount:        amount,
				BalanceBefore: current.Balance,
				BalanceAfter:  newBalance,
				Description:   description,
				Category:      category,
				Reference:     reference,
				Status:        models.TransactionStatusCompleted,
			}
			if err := e.entries.Append(entry); err != nil {
				// The balance moved but the log entry did not land. Put the
				// balance back so the reconciliation invariant holds.
				if restoreErr := e.accounts.CompareAndSetBalance(current.ID, newBalance, current.Balance); restoreErr != nil {
					e.logger.Error("unrecoverable: balance updated without log entry",
						"account_id", current.ID,
						"direction", direction,
						"amount", amount.String(),
						"append_error", err,
						"restore_error", restoreErr)
				}
				return nil, money.Zero, WrapError(KindUnexpected, "failed to append ledger entry", err)
			}
			return entry, newBalance, nil
		}

		if !errors.Is(casErr, repositories.ErrBalanceConflict) {
			return nil, money.Zero, e.classifyLookup(casErr)
		}

		e.metrics.CountConflictRetry(operation)
		current, err = e.accounts.GetByID(current.ID)
		if err != nil {
			return nil, money.Zero, e.classifyLookup(err)
		}
	}

	return nil, money.Zero, NewError(KindConflict, "balance write kept conflicting, giving up")
}

// nextBalance computes the balance an entry would produce, enforcing the
// debit rules for the account kind.
func (e *Engine) nextBalance(account *models.Account, direction string, amount money.Money) (money.Money, error) {
	switch direction {
	case models.DirectionCredit:
		if account.IsCreditCard() {
			newBalance, err := account.Balance.Sub(amount)
			if err != nil {
				return money.Zero, WrapError(KindInvalidAmount, "amount out of range", err)
			}
			if newBalance.IsNegative() {
				return money.Zero, NewError(KindInvalidRequest, "repayment exceeds drawn amount")
			}
			return newBalance, nil
		}
		newBalance, err := account.Balance.Add(amount)
		if err != nil {
			return money.Zero, WrapError(KindInvalidAmount, "amount out of range", err)
		}
		return newBalance, nil

	case models.DirectionDebit:
		if available, limited := account.AvailableToDebit(); limited && amount.Cmp(available) > 0 {
			return money.Zero, NewError(KindInsufficientFunds, "insufficient funds")
		}
		var newBalance money.Money
		var err error
		if account.IsCreditCard() {
			newBalance, err = account.Balance.Add(amount)
		} else {
			newBalance, err = account.Balance.Sub(amount)
		}
		if err != nil {
			return money.Zero, WrapError(KindInvalidAmount, "amount out of range", err)
		}
		return newBalance, nil

	default:
		return money.Zero, NewError(KindInvalidRequest, "unknown entry direction")
	}
}

// compensateDebit re-credits a debited account after the other transfer leg
// failed. A failed compensation is the one state the engine cannot repair,
// so it is logged at error level with everything an operator needs.
func (e *Engine) compensateDebit(accountID uuid.UUID, amount money.Money, reference string) {
	account, err := e.accounts.GetByID(accountID)
	if err != nil {
		e.logger.Error("unrecoverable: cannot load account for reversal",
			"account_id", accountID, "reference", reference, "error", err)
		return
	}

	if _, _, err := e.applyEntry(account, models.DirectionCredit, amount,
		"Reversal of failed transfer", models.CategoryReversal, reference); err != nil {
		e.logger.Error("unrecoverable: transfer debit could not be reversed",
			"account_id", accountID,
			"amount", amount.String(),
			"reference", reference,
			"error", err)
	}
}

func (e *Engine) failTransfer(record *models.Transfer, cause error) {
	record.Fail(cause.Error())
	if err := e.transfers.Update(record); err != nil {
		e.logger.Error("failed to mark transfer as failed",
			"transfer_id", record.ID, "error", err)
	}
}

// replay returns the stored receipt for a key already applied, or nil when
// the key is fresh. Reusing a key for a different operation is a conflict.
func (e *Engine) replay(key, operation string) (*Receipt, error) {
	if key == "" {
		return nil, nil
	}

	record, err := e.idempotency.Find(key)
	if err != nil {
		if errors.Is(err, repositories.ErrIdempotencyRecordNotFound) {
			return nil, nil
		}
		return nil, WrapError(KindUnexpected, "failed to check idempotency key", err)
	}

	if record.Operation != operation {
		return nil, NewError(KindConflict, "idempotency key was used for a different operation")
	}

	receipt, err := DecodeReceipt(record.Receipt)
	if err != nil {
		return nil, WrapError(KindUnexpected, "stored receipt is unreadable", err)
	}
	receipt.Replayed = true
	return receipt, nil
}

func (e *Engine) storeReceipt(key, operation string, receipt *Receipt) {
	if key == "" {
		return
	}

	payload, err := receipt.Encode()
	if err != nil {
		e.logger.Error("failed to encode receipt", "key", key, "error", err)
		return
	}

	record := &models.IdempotencyRecord{
		Key:       key,
		Operation: operation,
		Receipt:   payload,
	}
	if err := e.idempotency.Record(record); err != nil {
		e.logger.Warn("failed to store idempotency receipt",
			"key", key, "operation", operation, "error", err)
	}
}

func (e *Engine) lookupAccount(number string) (*models.Account, error) {
	account, err := e.accounts.GetByNumber(number)
	if err != nil {
		return nil, e.classifyLookup(err)
	}
	return account, nil
}

// freshActiveAccount re-reads an account under the guard and rejects
// anything not accepting operations.
func (e *Engine) freshActiveAccount(id uuid.UUID) (*models.Account, error) {
	account, err := e.accounts.GetByID(id)
	if err != nil {
		return nil, e.classifyLookup(err)
	}
	if !account.IsActive() {
		return nil, NewError(KindAccountClosed, "account is not active")
	}
	return account, nil
}

func (e *Engine) classifyLookup(err error) error {
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return WrapError(KindAccountNotFound, "account not found", err)
	}
	return WrapError(KindUnexpected, "account store failure", err)
}

func (e *Engine) observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	e.metrics.ObserveOperation(operation, outcome, e.now().Sub(start).Seconds())
}
