package models

type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionIncome     TransactionType = "income"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionRebirth    TransactionType = "rebirth"
	TransactionAdminFee   TransactionType = "adminFee"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is the append-only record of a projected on-chain event.
// TransactionHash is unique and doubles as the idempotency token.
type Transaction struct {
	ID              int64             `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	TransactionHash string            `json:"transaction_hash" gorm:"column:transaction_hash;size:80;uniqueIndex;not null"`
	FromAddress     string            `json:"from_address" gorm:"column:from_address;size:64;index;not null"`
	ToAddress       string            `json:"to_address" gorm:"column:to_address;size:64;index;not null"`
	Amount          float64           `json:"amount" gorm:"column:amount;not null"`
	// AmountRaw is the exact base-unit amount; Amount is derived from it.
	AmountRaw       string            `json:"amount_raw" gorm:"column:amount_raw;size:80"`
	TransactionType TransactionType   `json:"transaction_type" gorm:"column:transaction_type;size:16;index;not null"`
	Status          TransactionStatus `json:"status" gorm:"column:status;size:16;not null"`
	RelatedUserID   int64             `json:"related_user_id" gorm:"column:related_user_id;index;not null"`
	BlockNumber     uint64            `json:"block_number" gorm:"column:block_number;index"`
	LogIndex        uint              `json:"log_index" gorm:"column:log_index"`
	GasUsed         uint64            `json:"gas_used" gorm:"column:gas_used"`
	Description     string            `json:"description" gorm:"column:description"`
	ErrorMessage    string            `json:"error_message,omitempty" gorm:"column:error_message"`
	TransactionDate int64             `json:"transaction_date" gorm:"column:transaction_date;index"`
}
