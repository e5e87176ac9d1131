package models

// Earnings holds per-category income totals for a user.
// Total always equals Matrix + Level + Pool; it is only ever changed together
// with one of the categories in a single UPDATE.
type Earnings struct {
	Matrix float64 `json:"matrix_income" gorm:"column:matrix;not null;default:0"`
	Level  float64 `json:"level_income" gorm:"column:level;not null;default:0"`
	Pool   float64 `json:"pool_income" gorm:"column:pool;not null;default:0"`
	Total  float64 `json:"total" gorm:"column:total;not null;default:0;index"`
}

// User is a registered participant, keyed by wallet address.
type User struct {
	// ID is the surrogate key other rows reference.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Address is the normalized wallet address.
	Address string `json:"address" gorm:"column:address;size:64;uniqueIndex;not null"`
	// Username is the display name chosen at registration.
	Username string `json:"username" gorm:"column:username;size:64;uniqueIndex;not null"`
	// Email is optional; income notifications are only mailed when it is set.
	Email string `json:"email,omitempty" gorm:"column:email;size:255"`
	// ReferralCode is the user's own code, derived from the address.
	ReferralCode string `json:"referral_code" gorm:"column:referral_code;size:16;uniqueIndex;not null"`
	// ReferredByID points at the referrer. It is a weak reference.
	ReferredByID *int64 `json:"referred_by_id,omitempty" gorm:"column:referred_by_id;index"`
	// TeamDirect counts direct referrals.
	TeamDirect int64 `json:"team_direct" gorm:"column:team_direct;not null;default:0"`
	// TeamTotal counts the whole team below the user.
	TeamTotal int64 `json:"team_total" gorm:"column:team_total;not null;default:0"`
	// MatrixLevel is the matrix level the user sits on.
	MatrixLevel int `json:"matrix_level" gorm:"column:matrix_level;not null;default:1"`
	// CurrentSlot is the highest slot the user activated. Never lowered.
	CurrentSlot int `json:"current_slot" gorm:"column:current_slot;not null;default:0"`
	// Earnings are the income totals.
	Earnings Earnings `json:"earnings" gorm:"embedded;embeddedPrefix:earnings_"`
	// IsActive is false once the account is deactivated.
	IsActive bool `json:"is_active" gorm:"column:is_active;not null"`
	// IsBlocked marks accounts blocked by an operator.
	IsBlocked bool `json:"is_blocked" gorm:"column:is_blocked;not null"`
	// RegisteredAt is the unix time the registration was projected.
	RegisteredAt int64 `json:"registered_at" gorm:"column:registered_at;index"`
	// LastActivity is refreshed by every mutating event.
	LastActivity int64 `json:"last_activity" gorm:"column:last_activity"`

	ActiveSlots []UserSlot `json:"active_slots,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Referrals   []User     `json:"-" gorm:"foreignKey:ReferredByID"`
}

// UserSlot is one activated slot of a user. (UserID, SlotNumber) is unique.
type UserSlot struct {
	ID           int64 `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64 `json:"-" gorm:"column:user_id;not null;uniqueIndex:idx_user_slot"`
	SlotNumber   int   `json:"slot_number" gorm:"column:slot_number;not null;uniqueIndex:idx_user_slot;index"`
	IsActive     bool  `json:"is_active" gorm:"column:is_active;not null"`
	PurchasedAt  int64 `json:"purchased_at" gorm:"column:purchased_at"`
	RebirthCount int64 `json:"rebirth_count" gorm:"column:rebirth_count;not null;default:0"`
}
