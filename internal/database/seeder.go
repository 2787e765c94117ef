package database

import (
	"fmt"
	"log/slog"

	"bankledger/internal/models"
	"bankledger/internal/money"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"
)

// SeedDevData populates a development database with fake users and accounts.
// It is a no-op when users already exist.
func SeedDevData(db *gorm.DB, userCount int) error {
	var existing int64
	if err := db.Model(&models.User{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if existing > 0 {
		slog.Info("dev seed skipped, users already present", "count", existing)
		return nil
	}

	for i := 0; i < userCount; i++ {
		user := &models.User{
			Email:    gofakeit.Email(),
			FullName: gofakeit.Name(),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		account := &models.Account{
			UserID:  user.ID,
			Number:  fmt.Sprintf("%s%08d", models.SavingsPrefix, gofakeit.Number(10000000, 99999999)),
			Kind:    models.AccountKindSavings,
			Balance: money.FromMinorUnits(int64(gofakeit.Number(100000, 10000000))),
			Status:  models.AccountStatusActive,
		}
		if err := db.Create(account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}

		// Opening entry so the seeded balance reconciles against the log
		entry := &models.Transaction{
			AccountID:     account.ID,
			Sequence:      1,
			Direction:     models.DirectionCredit,
			Amount:        account.Balance,
			BalanceBefore: money.Zero,
			BalanceAfter:  account.Balance,
			Description:   "Opening deposit",
			Category:      models.CategoryDeposit,
			Status:        models.TransactionStatusCompleted,
			Reference:     fmt.Sprintf("SEED-%s", account.Number),
		}
		if err := db.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to seed opening entry: %w", err)
		}
	}

	slog.Info("dev seed completed", "users", userCount)
	return nil
}
