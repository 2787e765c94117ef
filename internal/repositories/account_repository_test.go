package repositories

import (
	"strings"
	"testing"

	"bankledger/internal/database"
	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// AccountRepositorySuite defines the test suite for AccountRepository
type AccountRepositorySuite struct {
	suite.Suite
	db       *database.DB
	repo     AccountRepositoryInterface
	testUser *models.User
}

// SetupTest runs before each test in the suite
func (s *AccountRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAccountRepository(s.db.DB)
	s.testUser = database.CreateTestUser(s.T(), s.db, "test@example.com")
}

// TearDownTest runs after each test in the suite
func (s *AccountRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestAccountRepositorySuite runs the test suite
func TestAccountRepositorySuite(t *testing.T) {
	suite.Run(t, new(AccountRepositorySuite))
}

func (s *AccountRepositorySuite) newSavingsAccount(number string, balance money.Money) *models.Account {
	return &models.Account{
		UserID:  s.testUser.ID,
		Number:  number,
		Kind:    models.AccountKindSavings,
		Balance: balance,
		Status:  models.AccountStatusActive,
	}
}

func (s *AccountRepositorySuite) TestCreate() {
	account := s.newSavingsAccount("2012345678", money.FromMinorUnits(100000))

	err := s.repo.Create(account)
	s.NoError(err)
	s.NotEqual(uuid.Nil, account.ID)
	s.NotZero(account.CreatedAt)
	s.NotZero(account.UpdatedAt)
}

func (s *AccountRepositorySuite) TestCreate_DuplicateNumber() {
	err := s.repo.Create(s.newSavingsAccount("2012345678", money.Zero))
	s.NoError(err)

	err = s.repo.Create(s.newSavingsAccount("2012345678", money.Zero))
	s.Error(err)
	// Either the translated sentinel or the raw driver message, depending on
	// whether the dialect translates duplicate keys
	s.True(err == ErrAccountNumberExists ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value"),
		"expected duplicate error but got: %s", err.Error())
}

func (s *AccountRepositorySuite) TestGetByID() {
	account := s.newSavingsAccount("2012345678", money.FromMinorUnits(50000))
	s.NoError(s.repo.Create(account))

	found, err := s.repo.GetByID(account.ID)
	s.NoError(err)
	s.Equal(account.ID, found.ID)
	s.Equal(account.Number, found.Number)
	s.Equal(money.FromMinorUnits(50000), found.Balance)

	_, err = s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestGetByNumber() {
	account := s.newSavingsAccount("2087654321", money.Zero)
	s.NoError(s.repo.Create(account))

	found, err := s.repo.GetByNumber("2087654321")
	s.NoError(err)
	s.Equal(account.ID, found.ID)

	_, err = s.repo.GetByNumber("2000000000")
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestCompareAndSetBalance() {
	account := s.newSavingsAccount("2012345678", money.FromMinorUnits(10000))
	s.NoError(s.repo.Create(account))

	err := s.repo.CompareAndSetBalance(account.ID,
		money.FromMinorUnits(10000), money.FromMinorUnits(15000))
	s.NoError(err)

	found, err := s.repo.GetByID(account.ID)
	s.NoError(err)
	s.Equal(money.FromMinorUnits(15000), found.Balance)
}

func (s *AccountRepositorySuite) TestCompareAndSetBalance_StaleExpected() {
	account := s.newSavingsAccount("2012345678", money.FromMinorUnits(10000))
	s.NoError(s.repo.Create(account))

	// First writer wins
	s.NoError(s.repo.CompareAndSetBalance(account.ID,
		money.FromMinorUnits(10000), money.FromMinorUnits(15000)))

	// Second writer carries a stale expectation and must lose
	err := s.repo.CompareAndSetBalance(account.ID,
		money.FromMinorUnits(10000), money.FromMinorUnits(5000))
	s.ErrorIs(err, ErrBalanceConflict)

	found, err := s.repo.GetByID(account.ID)
	s.NoError(err)
	s.Equal(money.FromMinorUnits(15000), found.Balance)
}

func (s *AccountRepositorySuite) TestCompareAndSetBalance_MissingAccount() {
	err := s.repo.CompareAndSetBalance(uuid.New(), money.Zero, money.FromMinorUnits(100))
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestGetByUserID() {
	s.NoError(s.repo.Create(s.newSavingsAccount("2011111111", money.Zero)))
	s.NoError(s.repo.Create(s.newSavingsAccount("2022222222", money.Zero)))

	accounts, err := s.repo.GetByUserID(s.testUser.ID)
	s.NoError(err)
	s.Len(accounts, 2)

	accounts, err = s.repo.GetByUserID(uuid.New())
	s.NoError(err)
	s.Empty(accounts)
}

func (s *AccountRepositorySuite) TestUpdate_StatusOnly() {
	account := s.newSavingsAccount("2012345678", money.Zero)
	s.NoError(s.repo.Create(account))

	s.NoError(account.Close())
	s.NoError(s.repo.Update(account))

	found, err := s.repo.GetByID(account.ID)
	s.NoError(err)
	s.Equal(models.AccountStatusClosed, found.Status)
	s.NotNil(found.ClosedAt)
}

func (s *AccountRepositorySuite) TestGenerateUniqueNumber() {
	number, err := s.repo.GenerateUniqueNumber(models.AccountKindSavings)
	s.NoError(err)
	s.Len(number, 10)
	s.Equal(models.SavingsPrefix, number[:2])

	_, err = s.repo.GenerateUniqueNumber("bogus")
	s.Error(err)
}
