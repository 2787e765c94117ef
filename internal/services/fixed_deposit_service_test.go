package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"bankledger/internal/dto"
	"bankledger/internal/ledger"
	"bankledger/internal/models"
	"bankledger/internal/money"
	"bankledger/internal/repositories"

	"github.com/stretchr/testify/suite"
)

// FixedDepositServiceSuite defines the test suite for the FD service
type FixedDepositServiceSuite struct {
	suite.Suite
	accountRepo *repositories.MemoryAccountRepository
	entryRepo   *repositories.MemoryTransactionRepository
	fdRepo      *repositories.MemoryFixedDepositRepository
	userRepo    *repositories.MemoryUserRepository
	engine      *ledger.Engine
	service     FixedDepositServiceInterface
	testUser    *models.User
	funding     *models.Account
}

// SetupTest runs before each test in the suite
func (s *FixedDepositServiceSuite) SetupTest() {
	s.accountRepo = repositories.NewMemoryAccountRepository()
	s.entryRepo = repositories.NewMemoryTransactionRepository()
	s.fdRepo = repositories.NewMemoryFixedDepositRepository()
	s.userRepo = repositories.NewMemoryUserRepository()
	s.engine = ledger.NewEngine(s.accountRepo, s.entryRepo,
		repositories.NewMemoryTransferRepository(),
		repositories.NewMemoryIdempotencyRepository(),
		ledger.NewGuard(time.Second), ledger.Config{})
	s.service = NewFixedDepositService(s.fdRepo, s.accountRepo, s.engine, slog.Default())

	s.testUser = &models.User{Email: "test@example.com", FullName: "Test User"}
	s.Require().NoError(s.userRepo.Create(s.testUser))

	s.funding = &models.Account{
		UserID:  s.testUser.ID,
		Number:  "5012345678",
		Kind:    models.AccountKindFDFunding,
		Balance: money.FromMinorUnits(10000000),
		Status:  models.AccountStatusActive,
	}
	s.Require().NoError(s.accountRepo.Create(s.funding))
}

// TestFixedDepositServiceSuite runs the test suite
func TestFixedDepositServiceSuite(t *testing.T) {
	suite.Run(t, new(FixedDepositServiceSuite))
}

func (s *FixedDepositServiceSuite) openFD(principal, rate string, months int) *models.FixedDeposit {
	fd, err := s.service.Open(context.Background(), dto.OpenFixedDepositRequest{
		UserID:        s.testUser.ID.String(),
		AccountNumber: s.funding.Number,
		Principal:     principal,
		InterestRate:  rate,
		TenureMonths:  months,
	})
	s.Require().NoError(err)
	return fd
}

func (s *FixedDepositServiceSuite) fundingBalance() money.Money {
	account, err := s.accountRepo.GetByID(s.funding.ID)
	s.Require().NoError(err)
	return account.Balance
}

func (s *FixedDepositServiceSuite) TestOpen() {
	fd := s.openFD("50000.00", "7.50", 12)

	s.Equal(models.FixedDepositStatusActive, fd.Status)
	s.Equal(money.FromMinorUnits(5000000), fd.Principal)
	s.Equal(fd.StartDate.AddDate(0, 12, 0), fd.MaturityDate)

	// Principal left the funding account through the ledger
	s.Equal(money.FromMinorUnits(5000000), s.fundingBalance())
	count, err := s.entryRepo.CountByAccount(s.funding.ID)
	s.NoError(err)
	s.Equal(int64(1), count)
}

func (s *FixedDepositServiceSuite) TestOpen_InsufficientFunds() {
	_, err := s.service.Open(context.Background(), dto.OpenFixedDepositRequest{
		UserID:        s.testUser.ID.String(),
		AccountNumber: s.funding.Number,
		Principal:     "999999.00",
		InterestRate:  "7.50",
		TenureMonths:  12,
	})
	s.Equal(ledger.KindInsufficientFunds, ledger.KindOf(err))
	s.Equal(money.FromMinorUnits(10000000), s.fundingBalance())
}

func (s *FixedDepositServiceSuite) TestOpen_ForeignAccount() {
	other := &models.User{Email: "other@example.com", FullName: "Other User"}
	s.Require().NoError(s.userRepo.Create(other))

	_, err := s.service.Open(context.Background(), dto.OpenFixedDepositRequest{
		UserID:        other.ID.String(),
		AccountNumber: s.funding.Number,
		Principal:     "1000.00",
		InterestRate:  "7.50",
		TenureMonths:  12,
	})
	s.Equal(ledger.KindInvalidRequest, ledger.KindOf(err))
}

func (s *FixedDepositServiceSuite) TestPayOut() {
	fd := s.openFD("50000.00", "8.00", 12)
	balanceAfterOpen := s.fundingBalance()

	// Jump past maturity
	restore := timeNow
	timeNow = func() time.Time { return fd.MaturityDate.Add(24 * time.Hour) }
	defer func() { timeNow = restore }()

	paid, err := s.service.PayOut(context.Background(), fd.FDNumber)
	s.NoError(err)
	s.Equal(models.FixedDepositStatusClosed, paid.Status)

	// Simple interest: 50000 * 8% * 12/12 = 4000.00
	expected, addErr := balanceAfterOpen.Add(money.FromMinorUnits(5400000))
	s.NoError(addErr)
	s.Equal(expected, s.fundingBalance())
}

func (s *FixedDepositServiceSuite) TestPayOut_NotMatured() {
	fd := s.openFD("50000.00", "8.00", 12)

	_, err := s.service.PayOut(context.Background(), fd.FDNumber)
	s.Equal(ledger.KindInvalidRequest, ledger.KindOf(err))
}

func (s *FixedDepositServiceSuite) TestRenew() {
	fd := s.openFD("50000.00", "8.00", 12)
	balanceAfterOpen := s.fundingBalance()

	restore := timeNow
	timeNow = func() time.Time { return fd.MaturityDate.Add(24 * time.Hour) }
	defer func() { timeNow = restore }()

	renewed, err := s.service.Renew(context.Background(), fd.FDNumber, dto.RenewFixedDepositRequest{
		TenureMonths: 24,
		InterestRate: "7.00",
	})
	s.NoError(err)
	s.NotEqual(fd.FDNumber, renewed.FDNumber)
	s.Equal(models.FixedDepositStatusActive, renewed.Status)
	s.Equal(24, renewed.TenureMonths)

	// Maturity amount rolled into the new principal: 50000 + 4000 interest
	s.Equal(money.FromMinorUnits(5400000), renewed.Principal)

	// The funding account did not move
	s.Equal(balanceAfterOpen, s.fundingBalance())

	old, err := s.service.GetByNumber(fd.FDNumber)
	s.NoError(err)
	s.Equal(models.FixedDepositStatusClosed, old.Status)
}
