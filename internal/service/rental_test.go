package service_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/service"
)

const testEscrowSecret = "test-escrow-secret-0123456789abcdef"

// marketplace bundles a store, keyring, clock, and the two lifecycle
// services, plus an owner with a listed asset and a funded renter.
type marketplace struct {
	store    *fakeStore
	keyring  *custody.Keyring
	clock    *fixedClock
	listings service.ListingService
	rentals  service.RentalService

	owner   uuid.UUID
	renter  uuid.UUID
	assetID string
}

func newMarketplace(t *testing.T, terms service.ListingTerms, renterDeposit uint64) *marketplace {
	t.Helper()
	keyring := custody.NewKeyring(testEscrowSecret)
	store := newFakeStore(keyring)
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	m := &marketplace{
		store:    store,
		keyring:  keyring,
		clock:    clock,
		listings: service.NewListingService(store, keyring, clock),
		rentals:  service.NewRentalService(store, keyring, clock),
		owner:    uuid.New(),
		renter:   uuid.New(),
		assetID:  "asset-1",
	}

	ctx := context.Background()
	err := store.Assets().Register(ctx, &domain.Asset{
		ID:     m.assetID,
		Name:   "Sword of Testing",
		Symbol: "SWORD",
		URI:    "ipfs://sword",
		Kind:   domain.AssetKindUnique,
		Holder: keyring.PartyAddressFor(m.owner),
	})
	require.NoError(t, err)

	_, err = m.listings.List(ctx, m.owner, m.assetID, terms)
	require.NoError(t, err)

	if renterDeposit > 0 {
		require.NoError(t, store.Funds().Deposit(ctx, keyring.PartyAddressFor(m.renter), renterDeposit, "deposit"))
	}
	return m
}

func (m *marketplace) balance(addr custody.Address) uint64 {
	b, _ := m.store.Funds().Balance(context.Background(), addr)
	return b
}

func (m *marketplace) totalFunds() uint64 {
	var sum uint64
	for _, b := range m.store.balances {
		sum += b
	}
	return sum
}

func (m *marketplace) assetHolder(t *testing.T) custody.Address {
	t.Helper()
	a, err := m.store.Assets().Get(context.Background(), m.assetID)
	require.NoError(t, err)
	return a.Holder
}

func defaultTerms() service.ListingTerms {
	return service.ListingTerms{
		DailyRent:       100,
		Collateral:      500,
		MinDurationDays: 1,
		MaxDurationDays: 30,
	}
}

func TestRent_HappyPath(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 2000)
	ctx := context.Background()

	l, err := m.rentals.Rent(ctx, m.renter, m.assetID, 7)
	require.NoError(t, err)

	// 7 days * 100 rent + 500 collateral = 1200 out of the renter's pocket.
	assert.Equal(t, uint64(800), m.balance(m.keyring.PartyAddressFor(m.renter)))
	assert.Equal(t, uint64(700), m.balance(m.keyring.PartyAddressFor(m.owner)))
	// Exactly the collateral stays escrowed.
	assert.Equal(t, uint64(500), m.balance(m.keyring.FundsVaultFor(m.assetID)))
	assert.Equal(t, m.keyring.PartyAddressFor(m.renter), m.assetHolder(t))

	renter, rented := l.Occupancy.Renter()
	require.True(t, rented)
	assert.Equal(t, m.renter, renter)
	end, _ := l.Occupancy.EndTime()
	assert.True(t, end.Equal(m.clock.Now().Add(7*24*time.Hour)))
	assert.True(t, l.IsActive)
	assert.Equal(t, "rented", l.Status())
}

func TestRent_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("listing not found", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.Rent(ctx, m.renter, "no-such-asset", 5)
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})

	t.Run("closed listing", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.listings.Unlist(ctx, m.owner, m.assetID)
		require.NoError(t, err)
		_, err = m.rentals.Rent(ctx, m.renter, m.assetID, 5)
		assert.ErrorIs(t, err, domain.ErrListingNotActive)
	})

	t.Run("already rented", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 5)
		require.NoError(t, err)

		other := uuid.New()
		require.NoError(t, m.store.Funds().Deposit(ctx, m.keyring.PartyAddressFor(other), 2000, "deposit"))
		_, err = m.rentals.Rent(ctx, other, m.assetID, 5)
		assert.ErrorIs(t, err, domain.ErrAlreadyRented)
	})

	t.Run("duration bounds", func(t *testing.T) {
		terms := service.ListingTerms{DailyRent: 10, Collateral: 0, MinDurationDays: 3, MaxDurationDays: 10}

		for _, tc := range []struct {
			name string
			days uint32
			err  error
		}{
			{"below min", 2, domain.ErrInvalidDuration},
			{"at min", 3, nil},
			{"at max", 10, nil},
			{"above max", 11, domain.ErrInvalidDuration},
		} {
			t.Run(tc.name, func(t *testing.T) {
				m := newMarketplace(t, terms, 1000)
				_, err := m.rentals.Rent(ctx, m.renter, m.assetID, tc.days)
				if tc.err != nil {
					assert.ErrorIs(t, err, tc.err)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})
}

func TestRent_HugeDurationEndsInFuture(t *testing.T) {
	terms := service.ListingTerms{
		DailyRent:       1,
		Collateral:      500,
		MinDurationDays: 1,
		MaxDurationDays: 4_000_000,
	}
	m := newMarketplace(t, terms, 300_000)
	ctx := context.Background()

	// A day count far beyond the Duration range in nanoseconds must still
	// produce an end time after now, never one wrapped into the past.
	l, err := m.rentals.Rent(ctx, m.renter, m.assetID, 200_000)
	require.NoError(t, err)

	end, _ := l.Occupancy.EndTime()
	assert.True(t, end.After(m.clock.Now()))
	assert.True(t, end.Equal(m.clock.Now().AddDate(0, 0, 200_000)))

	// Without the full duration elapsing, the owner cannot claim.
	_, err = m.rentals.ClaimExpired(ctx, m.owner, m.assetID)
	assert.ErrorIs(t, err, domain.ErrRentalNotExpired)
}

func TestRent_Overflow(t *testing.T) {
	terms := service.ListingTerms{
		DailyRent:       math.MaxUint64 / 2,
		Collateral:      10,
		MinDurationDays: 1,
		MaxDurationDays: 10,
	}
	m := newMarketplace(t, terms, 1000)
	ctx := context.Background()

	before := m.totalFunds()
	_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 3)
	assert.ErrorIs(t, err, domain.ErrOverflow)

	// Nothing moved and the listing is still rentable.
	assert.Equal(t, before, m.totalFunds())
	assert.Equal(t, m.keyring.AssetVaultFor(m.assetID), m.assetHolder(t))
	l, err := m.listings.Get(ctx, m.assetID)
	require.NoError(t, err)
	assert.True(t, l.Available())

	// Collateral alone can overflow the sum too.
	terms.DailyRent = 1
	terms.Collateral = math.MaxUint64
	m = newMarketplace(t, terms, 1000)
	_, err = m.rentals.Rent(ctx, m.renter, m.assetID, 1)
	assert.ErrorIs(t, err, domain.ErrOverflow)
}

func TestRent_InsufficientFundsRollsBack(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 100) // needs 1200 for 7 days
	ctx := context.Background()

	before := m.totalFunds()
	_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 7)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, before, m.totalFunds())
	assert.Equal(t, uint64(100), m.balance(m.keyring.PartyAddressFor(m.renter)))
	assert.Equal(t, m.keyring.AssetVaultFor(m.assetID), m.assetHolder(t))
	l, err := m.listings.Get(ctx, m.assetID)
	require.NoError(t, err)
	assert.True(t, l.Available())
}

func TestReturn_RefundsCollateralAndRelists(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 2000)
	ctx := context.Background()

	_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 7)
	require.NoError(t, err)
	totalBefore := m.totalFunds()

	l, err := m.rentals.Return(ctx, m.renter, m.assetID)
	require.NoError(t, err)

	// Renter paid rent only; the full collateral came back.
	assert.Equal(t, uint64(1300), m.balance(m.keyring.PartyAddressFor(m.renter)))
	assert.Equal(t, uint64(0), m.balance(m.keyring.FundsVaultFor(m.assetID)))
	assert.Equal(t, totalBefore, m.totalFunds())
	assert.Equal(t, m.keyring.AssetVaultFor(m.assetID), m.assetHolder(t))

	assert.True(t, l.IsActive)
	assert.False(t, l.Occupancy.Rented())
	assert.Equal(t, "available", l.Status())

	// The same listing accepts the next rental without re-listing.
	_, err = m.rentals.Rent(ctx, m.renter, m.assetID, 3)
	assert.NoError(t, err)
}

func TestReturn_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("not rented", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.Return(ctx, m.renter, m.assetID)
		assert.ErrorIs(t, err, domain.ErrNotRented)
	})

	t.Run("wrong caller", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 5)
		require.NoError(t, err)

		_, err = m.rentals.Return(ctx, uuid.New(), m.assetID)
		assert.ErrorIs(t, err, domain.ErrUnauthorizedRenter)

		// Even the owner cannot stand in for the renter.
		_, err = m.rentals.Return(ctx, m.owner, m.assetID)
		assert.ErrorIs(t, err, domain.ErrUnauthorizedRenter)
	})
}

func TestClaimExpired_SeizesAssetAndCollateral(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 2000)
	ctx := context.Background()

	_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 3)
	require.NoError(t, err)
	totalBefore := m.totalFunds()

	m.clock.Advance(3*24*time.Hour + time.Minute)

	l, err := m.rentals.ClaimExpired(ctx, m.owner, m.assetID)
	require.NoError(t, err)

	// Owner ends up with rent, collateral, and the asset back.
	assert.Equal(t, uint64(300+500), m.balance(m.keyring.PartyAddressFor(m.owner)))
	assert.Equal(t, uint64(0), m.balance(m.keyring.FundsVaultFor(m.assetID)))
	assert.Equal(t, totalBefore, m.totalFunds())
	assert.Equal(t, m.keyring.PartyAddressFor(m.owner), m.assetHolder(t))

	// The listing is closed for good.
	assert.False(t, l.IsActive)
	assert.False(t, l.Occupancy.Rented())
	assert.Equal(t, "closed", l.Status())

	_, err = m.rentals.Rent(ctx, m.renter, m.assetID, 3)
	assert.ErrorIs(t, err, domain.ErrListingNotActive)
	_, err = m.rentals.Return(ctx, m.renter, m.assetID)
	assert.ErrorIs(t, err, domain.ErrNotRented)
}

func TestClaimExpired_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("not owner", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 3)
		require.NoError(t, err)
		m.clock.Advance(4 * 24 * time.Hour)

		_, err = m.rentals.ClaimExpired(ctx, m.renter, m.assetID)
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("not rented", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.ClaimExpired(ctx, m.owner, m.assetID)
		assert.ErrorIs(t, err, domain.ErrNotRented)
	})

	t.Run("not yet expired", func(t *testing.T) {
		m := newMarketplace(t, defaultTerms(), 2000)
		_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 3)
		require.NoError(t, err)

		m.clock.Advance(3*24*time.Hour - time.Second)
		_, err = m.rentals.ClaimExpired(ctx, m.owner, m.assetID)
		assert.ErrorIs(t, err, domain.ErrRentalNotExpired)

		// Exactly at the end time the claim goes through.
		m.clock.Advance(time.Second)
		_, err = m.rentals.ClaimExpired(ctx, m.owner, m.assetID)
		assert.NoError(t, err)
	})
}

// checkInvariants asserts the listing facts that must hold after every
// transition: a closed listing is never occupied, and a rented listing has
// its asset with the renter while a vacant active one has it in the vault.
func checkInvariants(t *testing.T, m *marketplace) {
	t.Helper()
	l, err := m.listings.Get(context.Background(), m.assetID)
	require.NoError(t, err)

	if !l.IsActive {
		assert.False(t, l.Occupancy.Rented(), "closed listing must be vacant")
		return
	}
	if renter, rented := l.Occupancy.Renter(); rented {
		_, hasEnd := l.Occupancy.EndTime()
		assert.True(t, hasEnd, "rented listing must carry an end time")
		assert.Equal(t, m.keyring.PartyAddressFor(renter), m.assetHolder(t))
		assert.Equal(t, l.Collateral, m.balance(m.keyring.FundsVaultFor(m.assetID)),
			"funds vault must hold exactly the collateral while rented")
	} else {
		assert.Equal(t, m.keyring.AssetVaultFor(m.assetID), m.assetHolder(t))
		assert.Equal(t, uint64(0), m.balance(m.keyring.FundsVaultFor(m.assetID)))
	}
}

func TestTransitionSequenceKeepsInvariants(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 10000)
	ctx := context.Background()
	deposits := m.totalFunds()

	steps := []func() error{
		func() error { _, err := m.rentals.Rent(ctx, m.renter, m.assetID, 2); return err },
		func() error { _, err := m.rentals.Return(ctx, m.renter, m.assetID); return err },
		func() error { _, err := m.rentals.Rent(ctx, m.renter, m.assetID, 5); return err },
		func() error { _, err := m.rentals.Rent(ctx, m.renter, m.assetID, 5); return err },         // rejected
		func() error { _, err := m.listings.Unlist(ctx, m.owner, m.assetID); return err },          // rejected
		func() error { _, err := m.rentals.ClaimExpired(ctx, m.owner, m.assetID); return err },     // rejected, not expired
		func() error { m.clock.Advance(6 * 24 * time.Hour); return nil },
		func() error { _, err := m.rentals.ClaimExpired(ctx, m.owner, m.assetID); return err },
		func() error { _, err := m.rentals.Rent(ctx, m.renter, m.assetID, 2); return err },         // rejected, closed
	}
	for i, step := range steps {
		_ = step()
		checkInvariants(t, m)
		assert.Equal(t, deposits, m.totalFunds(), "step %d must conserve total funds", i)
	}
}

func TestRent_NotifiesOwner(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 2000)
	ctx := context.Background()

	_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 5)
	require.NoError(t, err)

	notes, total, err := m.store.Notifications().List(ctx, m.owner, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int32(1), total)
	assert.Equal(t, "Asset Rented", notes[0].Title)
	assert.Equal(t, m.assetID, notes[0].Attributes["asset_id"])
}

func TestClaimExpired_NotifiesForfeitedRenter(t *testing.T) {
	m := newMarketplace(t, defaultTerms(), 2000)
	ctx := context.Background()

	_, err := m.rentals.Rent(ctx, m.renter, m.assetID, 3)
	require.NoError(t, err)
	m.clock.Advance(4 * 24 * time.Hour)
	_, err = m.rentals.ClaimExpired(ctx, m.owner, m.assetID)
	require.NoError(t, err)

	notes, _, err := m.store.Notifications().List(ctx, m.renter, 1, 20)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Collateral Forfeited", notes[0].Title)
}
