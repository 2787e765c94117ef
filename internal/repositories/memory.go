package repositories

import (
	"sort"
	"sync"
	"time"

	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/google/uuid"
)

// In-memory implementations of the repository interfaces. They back the
// engine tests and the dev mode of the server, and honor the same contracts
// as the database-backed versions: compare-and-set balance mutation, per
// account sequence assignment, and unique idempotency keys.

// MemoryAccountRepository is a thread-safe in-memory account store
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*models.Account
	byNumber map[string]uuid.UUID
}

// NewMemoryAccountRepository creates an empty in-memory account store
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[uuid.UUID]*models.Account),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *MemoryAccountRepository) Create(account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	if account.Currency == "" {
		account.Currency = "INR"
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	if err := account.Validate(); err != nil {
		return err
	}
	if _, exists := r.byNumber[account.Number]; exists {
		return ErrAccountNumberExists
	}

	stored := *account
	r.accounts[account.ID] = &stored
	r.byNumber[account.Number] = account.ID
	return nil
}

func (r *MemoryAccountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *MemoryAccountRepository) GetByNumber(number string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[number]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *r.accounts[id]
	return &copied, nil
}

func (r *MemoryAccountRepository) GetByUserID(userID uuid.UUID) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []models.Account
	for _, account := range r.accounts {
		if account.UserID == userID {
			accounts = append(accounts, *account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *MemoryAccountRepository) GetAll(offset, limit int) ([]models.Account, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		all = append(all, *account)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []models.Account{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *MemoryAccountRepository) Update(account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	stored.Status = account.Status
	stored.ClosedAt = account.ClosedAt
	stored.OverdraftAllowed = account.OverdraftAllowed
	stored.CreditLimit = account.CreditLimit
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAccountRepository) CompareAndSetBalance(accountID uuid.UUID, expected, newBalance money.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	if account.Balance != expected {
		return ErrBalanceConflict
	}
	account.Balance = newBalance
	account.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAccountRepository) GenerateUniqueNumber(kind string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < 10; i++ {
		number := models.GenerateAccountNumber(kind)
		if number == "" {
			return "", models.ErrInvalidAccountKind
		}
		if _, exists := r.byNumber[number]; !exists {
			return number, nil
		}
	}
	return "", ErrAccountNumberExists
}

// MemoryTransactionRepository is a thread-safe in-memory transaction log
type MemoryTransactionRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*models.Transaction
	byAcct  map[uuid.UUID][]uuid.UUID
	nextSeq map[uuid.UUID]int64
}

// NewMemoryTransactionRepository creates an empty in-memory transaction log
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{
		entries: make(map[uuid.UUID]*models.Transaction),
		byAcct:  make(map[uuid.UUID][]uuid.UUID),
		nextSeq: make(map[uuid.UUID]int64),
	}
}

func (r *MemoryTransactionRepository) Append(entry *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = models.TransactionStatusCompleted
	}
	if entry.Reference == "" {
		entry.Reference = models.GenerateReference()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	entry.Sequence = r.nextSeq[entry.AccountID] + 1
	r.nextSeq[entry.AccountID] = entry.Sequence

	stored := *entry
	r.entries[entry.ID] = &stored
	r.byAcct[entry.AccountID] = append(r.byAcct[entry.AccountID], entry.ID)
	return nil
}

func (r *MemoryTransactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *MemoryTransactionRepository) GetByReference(reference string) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []models.Transaction
	for _, entry := range r.entries {
		if entry.Reference == reference {
			matches = append(matches, *entry)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *MemoryTransactionRepository) ListByAccount(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	if err := filters.Validate(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Transaction
	for _, id := range r.byAcct[filters.AccountID] {
		entry := r.entries[id]
		if filters.Direction != "" && entry.Direction != filters.Direction {
			continue
		}
		if filters.Status != "" && entry.Status != filters.Status {
			continue
		}
		if filters.Category != "" && entry.Category != filters.Category {
			continue
		}
		if filters.StartDate != nil && entry.CreatedAt.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && entry.CreatedAt.After(*filters.EndDate) {
			continue
		}
		matched = append(matched, *entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Sequence > matched[j].Sequence
	})

	total := int64(len(matched))
	if filters.Offset >= len(matched) {
		return []models.Transaction{}, total, nil
	}
	end := filters.Offset + filters.Limit
	if filters.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[filters.Offset:end], total, nil
}

func (r *MemoryTransactionRepository) SumByAccount(accountID uuid.UUID) (credits, debits money.Money, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.byAcct[accountID] {
		entry := r.entries[id]
		if entry.Status != models.TransactionStatusCompleted {
			continue
		}
		switch entry.Direction {
		case models.DirectionCredit:
			credits, err = credits.Add(entry.Amount)
		case models.DirectionDebit:
			debits, err = debits.Add(entry.Amount)
		}
		if err != nil {
			return money.Zero, money.Zero, err
		}
	}
	return credits, debits, nil
}

func (r *MemoryTransactionRepository) CountByAccount(accountID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byAcct[accountID])), nil
}

// MemoryTransferRepository is a thread-safe in-memory transfer store
type MemoryTransferRepository struct {
	mu        sync.RWMutex
	transfers map[uuid.UUID]*models.Transfer
}

// NewMemoryTransferRepository creates an empty in-memory transfer store
func NewMemoryTransferRepository() *MemoryTransferRepository {
	return &MemoryTransferRepository{
		transfers: make(map[uuid.UUID]*models.Transfer),
	}
}

func (r *MemoryTransferRepository) Create(transfer *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferStatusPending
	}
	if transfer.Reference == "" {
		transfer.Reference = models.GenerateReference()
	}
	now := time.Now()
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = now
	}
	transfer.UpdatedAt = now

	if err := transfer.Validate(); err != nil {
		return err
	}

	stored := *transfer
	r.transfers[transfer.ID] = &stored
	return nil
}

func (r *MemoryTransferRepository) Update(transfer *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transfers[transfer.ID]; !ok {
		return ErrTransferNotFound
	}
	transfer.UpdatedAt = time.Now()
	stored := *transfer
	r.transfers[transfer.ID] = &stored
	return nil
}

func (r *MemoryTransferRepository) FindByID(id uuid.UUID) (*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transfer, ok := r.transfers[id]
	if !ok {
		return nil, ErrTransferNotFound
	}
	copied := *transfer
	return &copied, nil
}

func (r *MemoryTransferRepository) ListByAccount(accountID uuid.UUID, offset, limit int) ([]models.Transfer, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Transfer
	for _, transfer := range r.transfers {
		if transfer.FromAccountID == accountID || transfer.ToAccountID == accountID {
			matched = append(matched, *transfer)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Transfer{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// MemoryIdempotencyRepository is a thread-safe in-memory receipt store
type MemoryIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*models.IdempotencyRecord
}

// NewMemoryIdempotencyRepository creates an empty in-memory receipt store
func NewMemoryIdempotencyRepository() *MemoryIdempotencyRepository {
	return &MemoryIdempotencyRepository{
		records: make(map[string]*models.IdempotencyRecord),
	}
}

func (r *MemoryIdempotencyRepository) Find(key string) (*models.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[key]
	if !ok {
		return nil, ErrIdempotencyRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *MemoryIdempotencyRepository) Record(record *models.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if _, exists := r.records[record.Key]; exists {
		return ErrIdempotencyKeyExists
	}

	stored := *record
	r.records[record.Key] = &stored
	return nil
}

// MemoryFixedDepositRepository is a thread-safe in-memory fixed deposit store
type MemoryFixedDepositRepository struct {
	mu       sync.RWMutex
	deposits map[uuid.UUID]*models.FixedDeposit
}

// NewMemoryFixedDepositRepository creates an empty in-memory FD store
func NewMemoryFixedDepositRepository() *MemoryFixedDepositRepository {
	return &MemoryFixedDepositRepository{
		deposits: make(map[uuid.UUID]*models.FixedDeposit),
	}
}

func (r *MemoryFixedDepositRepository) Create(fd *models.FixedDeposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fd.ID == uuid.Nil {
		fd.ID = uuid.New()
	}
	if fd.FDNumber == "" {
		fd.FDNumber = models.GenerateFDNumber()
	}
	if fd.Status == "" {
		fd.Status = models.FixedDepositStatusActive
	}
	if fd.InterestPayout == "" {
		fd.InterestPayout = models.InterestPayoutMaturity
	}
	now := time.Now()
	if fd.StartDate.IsZero() {
		fd.StartDate = now
	}
	if fd.MaturityDate.IsZero() {
		fd.MaturityDate = fd.StartDate.AddDate(0, fd.TenureMonths, 0)
	}
	if fd.CreatedAt.IsZero() {
		fd.CreatedAt = now
	}
	fd.UpdatedAt = now

	if err := fd.Validate(); err != nil {
		return err
	}

	stored := *fd
	r.deposits[fd.ID] = &stored
	return nil
}

func (r *MemoryFixedDepositRepository) GetByID(id uuid.UUID) (*models.FixedDeposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fd, ok := r.deposits[id]
	if !ok {
		return nil, ErrFixedDepositNotFound
	}
	copied := *fd
	return &copied, nil
}

func (r *MemoryFixedDepositRepository) GetByFDNumber(fdNumber string) (*models.FixedDeposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fd := range r.deposits {
		if fd.FDNumber == fdNumber {
			copied := *fd
			return &copied, nil
		}
	}
	return nil, ErrFixedDepositNotFound
}

func (r *MemoryFixedDepositRepository) GetByUserID(userID uuid.UUID) ([]models.FixedDeposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fds []models.FixedDeposit
	for _, fd := range r.deposits {
		if fd.UserID == userID {
			fds = append(fds, *fd)
		}
	}
	sort.Slice(fds, func(i, j int) bool {
		return fds[i].CreatedAt.After(fds[j].CreatedAt)
	})
	return fds, nil
}

func (r *MemoryFixedDepositRepository) Update(fd *models.FixedDeposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deposits[fd.ID]; !ok {
		return ErrFixedDepositNotFound
	}
	fd.UpdatedAt = time.Now()
	stored := *fd
	r.deposits[fd.ID] = &stored
	return nil
}

func (r *MemoryFixedDepositRepository) ListMaturedBefore(cutoff time.Time) ([]models.FixedDeposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []models.FixedDeposit
	for _, fd := range r.deposits {
		if fd.Status == models.FixedDepositStatusActive && !fd.MaturityDate.After(cutoff) {
			due = append(due, *fd)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].MaturityDate.Before(due[j].MaturityDate)
	})
	return due, nil
}

// MemoryCreditCardRepository is a thread-safe in-memory credit card store
type MemoryCreditCardRepository struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*models.CreditCard
}

// NewMemoryCreditCardRepository creates an empty in-memory card store
func NewMemoryCreditCardRepository() *MemoryCreditCardRepository {
	return &MemoryCreditCardRepository{
		cards: make(map[uuid.UUID]*models.CreditCard),
	}
}

func (r *MemoryCreditCardRepository) Create(card *models.CreditCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.MaskedNumber == "" {
		card.MaskedNumber = models.GenerateMaskedCardNumber()
	}
	if card.IssuedAt.IsZero() {
		card.IssuedAt = time.Now()
	}
	if err := card.Validate(); err != nil {
		return err
	}

	stored := *card
	r.cards[card.ID] = &stored
	return nil
}

func (r *MemoryCreditCardRepository) GetByID(id uuid.UUID) (*models.CreditCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return nil, ErrCreditCardNotFound
	}
	copied := *card
	return &copied, nil
}

func (r *MemoryCreditCardRepository) GetByUserID(userID uuid.UUID) ([]models.CreditCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cards []models.CreditCard
	for _, card := range r.cards {
		if card.UserID == userID {
			cards = append(cards, *card)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].IssuedAt.After(cards[j].IssuedAt)
	})
	return cards, nil
}

// MemoryUserRepository is a thread-safe in-memory user store
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

// NewMemoryUserRepository creates an empty in-memory user store
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if err := user.Validate(); err != nil {
		return err
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailExists
	}

	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}
