package projector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/validation"
)

const registerAttempts = 3

func (p *Projector) userRegistered(ctx context.Context, ev models.UserRegistered) error {
	now := time.Now().Unix()

	return p.repo.InTx(ctx, func(s models.LedgerStore) error {
		if _, err := s.FindUserByAddress(ctx, ev.Wallet); err == nil {
			return models.ErrDuplicate
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		var referrer *models.User
		if code := strings.ToUpper(strings.TrimSpace(ev.ReferralCode)); code != "" {
			found, err := s.FindUserByReferralCode(ctx, code)
			switch {
			case errors.Is(err, models.ErrNotFound):
				p.logger.Warnw("Referrer not found, registering without sponsor", "wallet", ev.Wallet, "referral_code", code)
			case err != nil:
				return err
			default:
				referrer = found
			}
		}

		username := strings.TrimSpace(ev.Username)
		if username == "" {
			username = "user_" + validation.ShortAddress(ev.Wallet, 6)
		}

		for attempt := 0; attempt < registerAttempts; attempt++ {
			user := &models.User{
				Address:      ev.Wallet,
				Username:     username,
				ReferralCode: ReferralCode(ev.Wallet, ReferralCodeLength+2*attempt),
				MatrixLevel:  1,
				IsActive:     true,
				RegisteredAt: now,
				LastActivity: now,
			}
			if attempt > 0 {
				user.Username = username + "_" + validation.ShortAddress(ev.Wallet, 6)
			}
			if referrer != nil {
				user.ReferredByID = &referrer.ID
			}

			created, err := s.InsertUserIfAbsent(ctx, user)
			if err != nil {
				return err
			}
			if created {
				if referrer != nil {
					if err := s.IncrementTeamSize(ctx, referrer.ID); err != nil {
						return fmt.Errorf("failed to credit referrer %s: %w", referrer.Address, err)
					}
				}
				return nil
			}

			// Another writer may have registered the same wallet meanwhile.
			if _, err := s.FindUserByAddress(ctx, ev.Wallet); err == nil {
				return models.ErrDuplicate
			}
			p.logger.Debugw("Username or referral code taken, retrying", "wallet", ev.Wallet, "username", user.Username, "attempt", attempt+1)
		}
		return fmt.Errorf("could not find a free username or referral code for %s", ev.Wallet)
	})
}

func (p *Projector) slotPurchased(ctx context.Context, ev models.SlotPurchased) error {
	gas := p.gasUsed(ctx, ev.EventMeta)
	now := time.Now().Unix()

	return p.repo.InTx(ctx, func(s models.LedgerStore) error {
		user, err := s.FindUserByAddress(ctx, ev.Wallet)
		if errors.Is(err, models.ErrNotFound) {
			return missing("user %s", ev.Wallet)
		} else if err != nil {
			return err
		}
		slot, err := s.FindSlot(ctx, ev.SlotNumber)
		if errors.Is(err, models.ErrNotFound) {
			return missing("slot %d", ev.SlotNumber)
		} else if err != nil {
			return err
		}

		inserted, err := s.InsertTransaction(ctx, &models.Transaction{
			TransactionHash: ev.TxHash,
			FromAddress:     ev.Wallet,
			ToAddress:       p.config.ContractAddress,
			Amount:          slot.Price,
			TransactionType: models.TransactionPurchase,
			Status:          models.StatusCompleted,
			RelatedUserID:   user.ID,
			BlockNumber:     ev.BlockNumber,
			LogIndex:        ev.LogIndex,
			GasUsed:         gas,
			Description:     fmt.Sprintf("Slot %d purchased", ev.SlotNumber),
			TransactionDate: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return models.ErrDuplicate
		}

		if _, err := s.ActivateUserSlot(ctx, user.ID, ev.SlotNumber, now); err != nil {
			return err
		}
		if _, err := s.RaiseCurrentSlot(ctx, user.ID, ev.SlotNumber, now); err != nil {
			return err
		}
		return s.IncrementSlotPurchases(ctx, ev.SlotNumber, now)
	})
}

func (p *Projector) income(
	ctx context.Context,
	meta models.EventMeta,
	kind models.EventKind,
	incomeType models.IncomeType,
	sender, receiver string,
	amount models.Amount,
	slotNumber, levelNumber *int,
) error {
	gas := p.gasUsed(ctx, meta)
	now := time.Now().Unix()

	var user *models.User
	err := p.repo.InTx(ctx, func(s models.LedgerStore) error {
		var err error
		user, err = s.FindUserByAddress(ctx, receiver)
		if errors.Is(err, models.ErrNotFound) {
			return missing("receiver %s", receiver)
		} else if err != nil {
			return err
		}

		var relatedUserID *int64
		from := sender
		if sender == "" {
			from = p.config.ContractAddress
		} else {
			counterparty, err := s.FindUserByAddress(ctx, sender)
			switch {
			case err == nil:
				relatedUserID = &counterparty.ID
			case !errors.Is(err, models.ErrNotFound):
				return err
			}
		}

		description := fmt.Sprintf("%s income", incomeType)
		switch {
		case slotNumber != nil:
			description = fmt.Sprintf("%s from slot %d", description, *slotNumber)
		case levelNumber != nil:
			description = fmt.Sprintf("%s from level %d", description, *levelNumber)
		}

		inserted, err := s.InsertTransaction(ctx, &models.Transaction{
			TransactionHash: meta.TxHash,
			FromAddress:     from,
			ToAddress:       receiver,
			Amount:          amount.Value,
			AmountRaw:       amount.Raw,
			TransactionType: models.TransactionIncome,
			Status:          models.StatusCompleted,
			RelatedUserID:   user.ID,
			BlockNumber:     meta.BlockNumber,
			LogIndex:        meta.LogIndex,
			GasUsed:         gas,
			Description:     description,
			TransactionDate: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return models.ErrDuplicate
		}

		if err := s.IncrementEarnings(ctx, user.ID, incomeType, amount.Value, now); err != nil {
			return err
		}
		return s.InsertIncome(ctx, &models.Income{
			UserID:          user.ID,
			IncomeType:      incomeType,
			Amount:          amount.Value,
			AmountRaw:       amount.Raw,
			RelatedUserID:   relatedUserID,
			SlotNumber:      slotNumber,
			LevelNumber:     levelNumber,
			TransactionHash: meta.TxHash,
			Description:     description,
			IncomeDate:      now,
		})
	})
	if err != nil {
		return err
	}

	if p.notifier != nil {
		n := models.IncomeNotification{
			Event:      kind,
			User:       receiver,
			IncomeType: incomeType,
			Amount:     amount.Value,
			Currency:   p.config.Token.Symbol,
			TxHash:     meta.TxHash,
			Timestamp:  now,
		}
		if slotNumber != nil {
			n.SlotNumber = *slotNumber
		}
		if levelNumber != nil {
			n.LevelNumber = *levelNumber
		}
		p.notifier.NotifyIncome(user, n)
	}
	return nil
}

func (p *Projector) rebirth(ctx context.Context, ev models.Rebirth) error {
	gas := p.gasUsed(ctx, ev.EventMeta)
	now := time.Now().Unix()

	return p.repo.InTx(ctx, func(s models.LedgerStore) error {
		user, err := s.FindUserByAddress(ctx, ev.Wallet)
		if errors.Is(err, models.ErrNotFound) {
			return missing("user %s", ev.Wallet)
		} else if err != nil {
			return err
		}

		price := 0.0
		slot, err := s.FindSlot(ctx, ev.SlotNumber)
		switch {
		case err == nil:
			price = slot.Price
		case errors.Is(err, models.ErrNotFound):
			slot = nil
			p.logger.Infow("Slot not in catalogue, recording rebirth with zero amount", "slot", ev.SlotNumber, "tx", ev.TxHash)
		default:
			return err
		}

		inserted, err := s.InsertTransaction(ctx, &models.Transaction{
			TransactionHash: ev.TxHash,
			FromAddress:     ev.Wallet,
			ToAddress:       p.config.ContractAddress,
			Amount:          price,
			TransactionType: models.TransactionRebirth,
			Status:          models.StatusCompleted,
			RelatedUserID:   user.ID,
			BlockNumber:     ev.BlockNumber,
			LogIndex:        ev.LogIndex,
			GasUsed:         gas,
			Description:     fmt.Sprintf("Rebirth in slot %d", ev.SlotNumber),
			TransactionDate: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return models.ErrDuplicate
		}

		reborn, err := s.IncrementRebirth(ctx, user.ID, ev.SlotNumber, now)
		if err != nil {
			return err
		}
		if !reborn {
			p.logger.Warnw("Rebirth for a slot the user never activated", "wallet", ev.Wallet, "slot", ev.SlotNumber, "tx", ev.TxHash)
		}
		if slot != nil {
			return s.IncrementSlotPurchases(ctx, ev.SlotNumber, now)
		}
		return nil
	})
}

func (p *Projector) adminFee(ctx context.Context, ev models.AdminFeePaid) error {
	gas := p.gasUsed(ctx, ev.EventMeta)
	now := time.Now().Unix()

	return p.repo.InTx(ctx, func(s models.LedgerStore) error {
		user, err := s.FindUserByAddress(ctx, ev.Receiver)
		if errors.Is(err, models.ErrNotFound) {
			return missing("receiver %s", ev.Receiver)
		} else if err != nil {
			return err
		}

		inserted, err := s.InsertTransaction(ctx, &models.Transaction{
			TransactionHash: ev.TxHash,
			FromAddress:     p.config.ContractAddress,
			ToAddress:       ev.Receiver,
			Amount:          ev.Amount.Value,
			AmountRaw:       ev.Amount.Raw,
			TransactionType: models.TransactionAdminFee,
			Status:          models.StatusCompleted,
			RelatedUserID:   user.ID,
			BlockNumber:     ev.BlockNumber,
			LogIndex:        ev.LogIndex,
			GasUsed:         gas,
			Description:     "Admin fee",
			TransactionDate: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return models.ErrDuplicate
		}
		return nil
	})
}
