package jobs

import (
	"context"
	"fmt"
	"time"

	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
)

// SendExpiryReminders notifies renters whose rental ends within the
// configured reminder window.
func (jr *JobRunner) SendExpiryReminders() {
	jr.runWithRecovery("SendExpiryReminders", func() {
		ctx := context.Background()
		now := jr.clock.Now()
		window := time.Duration(jr.config.Scheduler.ReminderWindowHours) * time.Hour

		listings, err := jr.store.Listings().ListEndingBetween(ctx, now, now.Add(window))
		if err != nil {
			logger.Error("Failed to query ending rentals", "error", err)
			return
		}

		for _, l := range listings {
			renter, ok := l.Occupancy.Renter()
			if !ok {
				continue
			}
			end, _ := l.Occupancy.EndTime()
			note := &domain.Notification{
				PartyID: renter,
				Title:   "Rental Ending Soon",
				Message: fmt.Sprintf("Your rental of asset %s ends at %s; return it to get your collateral back", l.AssetID, end.Format(time.RFC3339)),
				Attributes: map[string]string{
					"type":     "RENTAL_ENDING",
					"asset_id": l.AssetID,
				},
			}
			if err := jr.store.Notifications().Create(ctx, note); err != nil {
				logger.Error("Failed to create reminder notification", "asset_id", l.AssetID, "error", err)
			}
		}

		logger.Info("Sent expiry reminders", "count", len(listings))
	})
}

// NotifyClaimable notifies owners of rentals past their end time. The job
// never claims on their behalf: claiming forfeits the renter's collateral
// and closes the listing, and that decision belongs to the owner.
func (jr *JobRunner) NotifyClaimable() {
	jr.runWithRecovery("NotifyClaimable", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		// Everything still out past its end time, however long ago it ended.
		listings, err := jr.store.Listings().ListEndingBetween(ctx, time.Time{}, now)
		if err != nil {
			logger.Error("Failed to query expired rentals", "error", err)
			return
		}

		for _, l := range listings {
			note := &domain.Notification{
				PartyID: l.Owner,
				Title:   "Rental Expired",
				Message: fmt.Sprintf("The rental of asset %s has expired without return; you may claim the asset and the collateral", l.AssetID),
				Attributes: map[string]string{
					"type":     "RENTAL_CLAIMABLE",
					"asset_id": l.AssetID,
				},
			}
			if err := jr.store.Notifications().Create(ctx, note); err != nil {
				logger.Error("Failed to create claimable notification", "asset_id", l.AssetID, "error", err)
			}
		}

		logger.Info("Notified owners of claimable rentals", "count", len(listings))
	})
}
