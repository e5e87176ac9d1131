package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/core-coin/fortunity-sync/internal/models"
)

// ledger implements the atomic primitives over a *gorm.DB, which is either the
// pool or an open transaction.
type ledger struct {
	db *gorm.DB
}

func (l *ledger) FindUserByAddress(ctx context.Context, address string) (*models.User, error) {
	var user models.User
	if err := l.db.WithContext(ctx).Where("address = ?", address).First(&user).Error; err != nil {
		return nil, notFound(err, "failed to get user")
	}
	return &user, nil
}

func (l *ledger) FindUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := l.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, notFound(err, "failed to get user by referral code")
	}
	return &user, nil
}

func (l *ledger) FindSlot(ctx context.Context, slotNumber int) (*models.Slot, error) {
	var slot models.Slot
	if err := l.db.WithContext(ctx).Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		return nil, notFound(err, "failed to get slot")
	}
	return &slot, nil
}

func (l *ledger) InsertUserIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	res := l.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (l *ledger) IncrementTeamSize(ctx context.Context, userID int64) error {
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"team_direct": gorm.Expr("team_direct + 1"),
			"team_total":  gorm.Expr("team_total + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment team size: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (l *ledger) ActivateUserSlot(ctx context.Context, userID int64, slotNumber int, at int64) (bool, error) {
	userSlot := models.UserSlot{
		UserID:      userID,
		SlotNumber:  slotNumber,
		IsActive:    true,
		PurchasedAt: at,
	}
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "slot_number"}},
			DoNothing: true,
		}).
		Create(&userSlot)
	if res.Error != nil {
		return false, fmt.Errorf("failed to activate slot: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (l *ledger) RaiseCurrentSlot(ctx context.Context, userID int64, slotNumber int, at int64) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND current_slot < ?", userID, slotNumber).
		Updates(map[string]interface{}{
			"current_slot":  slotNumber,
			"last_activity": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to raise current slot: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (l *ledger) IncrementSlotPurchases(ctx context.Context, slotNumber int, at int64) error {
	res := l.db.WithContext(ctx).Model(&models.Slot{}).
		Where("slot_number = ?", slotNumber).
		Updates(map[string]interface{}{
			"purchase_count":   gorm.Expr("purchase_count + 1"),
			"last_purchase_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment slot purchases: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (l *ledger) IncrementRebirth(ctx context.Context, userID int64, slotNumber int, at int64) (bool, error) {
	res := l.db.WithContext(ctx).Model(&models.UserSlot{}).
		Where("user_id = ? AND slot_number = ?", userID, slotNumber).
		Updates(map[string]interface{}{
			"rebirth_count": gorm.Expr("rebirth_count + 1"),
			"purchased_at":  at,
			"is_active":     true,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment rebirth: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_activity", at).Error; err != nil {
		return true, fmt.Errorf("failed to touch user activity: %w", err)
	}
	return true, nil
}

func (l *ledger) IncrementEarnings(ctx context.Context, userID int64, incomeType models.IncomeType, amount float64, at int64) error {
	column, err := incomeType.EarningsColumn()
	if err != nil {
		return err
	}
	// One statement moves the category and the grand total together.
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			column:           gorm.Expr(column+" + ?", amount),
			"earnings_total": gorm.Expr("earnings_total + ?", amount),
			"last_activity":  at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment %s earnings: %w", incomeType, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (l *ledger) InsertTransaction(ctx context.Context, tx *models.Transaction) (bool, error) {
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_hash"}},
			DoNothing: true,
		}).
		Create(tx)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert transaction: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (l *ledger) InsertIncome(ctx context.Context, income *models.Income) error {
	if err := l.db.WithContext(ctx).Create(income).Error; err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
