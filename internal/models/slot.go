package models

const (
	MinSlotNumber = 1
	MaxSlotNumber = 12
)

// Slot is one entry of the slot catalogue.
type Slot struct {
	// SlotNumber is the key, 1..12.
	SlotNumber int `json:"slot_number" gorm:"column:slot_number;primaryKey;autoIncrement:false"`
	// Price is the slot price in token units.
	Price float64 `json:"price" gorm:"column:price;not null"`
	// Income split percentages, summing to 100.
	MatrixIncomePercentage int `json:"matrix_income_percentage" gorm:"column:matrix_income_percentage;not null"`
	LevelIncomePercentage  int `json:"level_income_percentage" gorm:"column:level_income_percentage;not null"`
	PoolIncomePercentage   int `json:"pool_income_percentage" gorm:"column:pool_income_percentage;not null"`
	// RebirthRequired and RebirthThreshold form the rebirth policy.
	RebirthRequired  bool    `json:"rebirth_required" gorm:"column:rebirth_required;not null"`
	RebirthThreshold float64 `json:"rebirth_threshold" gorm:"column:rebirth_threshold;not null"`
	Description      string  `json:"description" gorm:"column:description"`
	IsActive         bool    `json:"is_active" gorm:"column:is_active;not null"`
	// PurchaseCount only grows, through atomic increments.
	PurchaseCount  int64 `json:"purchase_count" gorm:"column:purchase_count;not null;default:0"`
	LastPurchaseAt int64 `json:"last_purchase_at" gorm:"column:last_purchase_at"`
}

// ValidSlotNumber reports whether n is inside the catalogue bounds.
func ValidSlotNumber(n int) bool {
	return n >= MinSlotNumber && n <= MaxSlotNumber
}

// SplitValid reports whether the income split sums to 100.
func (s *Slot) SplitValid() bool {
	return s.MatrixIncomePercentage+s.LevelIncomePercentage+s.PoolIncomePercentage == 100
}

// DefaultSlots returns the standard twelve-slot catalogue.
func DefaultSlots() []Slot {
	prices := []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000}
	names := []string{
		"Entry Level Slot", "Beginner Slot", "Intermediate Slot", "Advanced Slot",
		"Expert Slot", "Master Slot", "Grand Master Slot", "Elite Slot",
		"Legendary Slot", "Mythic Slot", "Godlike Slot", "Ultimate Slot",
	}

	slots := make([]Slot, 0, len(prices))
	for i, price := range prices {
		slots = append(slots, Slot{
			SlotNumber:             i + 1,
			Price:                  price,
			MatrixIncomePercentage: 50,
			LevelIncomePercentage:  30,
			PoolIncomePercentage:   20,
			RebirthRequired:        i > 0,
			RebirthThreshold:       1000,
			Description:            names[i],
			IsActive:               true,
		})
	}
	return slots
}
