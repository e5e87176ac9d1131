package models

import "fmt"

type IncomeType string

const (
	IncomeMatrix IncomeType = "matrix"
	IncomeLevel  IncomeType = "level"
	IncomePool   IncomeType = "pool"
)

// EarningsColumn returns the users column holding totals for the income type.
func (t IncomeType) EarningsColumn() (string, error) {
	switch t {
	case IncomeMatrix:
		return "earnings_matrix", nil
	case IncomeLevel:
		return "earnings_level", nil
	case IncomePool:
		return "earnings_pool", nil
	}
	return "", fmt.Errorf("invalid income type %q", t)
}

// Income is one payout to a user.
type Income struct {
	ID              int64      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64      `json:"user_id" gorm:"column:user_id;index;not null"`
	IncomeType      IncomeType `json:"income_type" gorm:"column:income_type;size:16;index;not null"`
	Amount          float64    `json:"amount" gorm:"column:amount;not null"`
	AmountRaw       string     `json:"amount_raw" gorm:"column:amount_raw;size:80"`
	RelatedUserID   *int64     `json:"related_user_id,omitempty" gorm:"column:related_user_id"`
	SlotNumber      *int       `json:"slot_number,omitempty" gorm:"column:slot_number"`
	LevelNumber     *int       `json:"level_number,omitempty" gorm:"column:level_number"`
	TransactionHash string     `json:"transaction_hash" gorm:"column:transaction_hash;size:80;index"`
	Description     string     `json:"description" gorm:"column:description"`
	IncomeDate      int64      `json:"income_date" gorm:"column:income_date;index"`
}
