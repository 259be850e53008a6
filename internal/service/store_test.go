package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/repository"
)

var (
	errPartyNotFound = errors.New("party not found")
	errDuplicateRow  = errors.New("duplicate row")
	errNoteNotFound  = errors.New("notification not found")
)

// fakeStore is an in-memory repository.Store. Transfers enforce the same
// authority and balance rules as the postgres repositories, and WithinTx
// restores the pre-transaction state when fn errors, so the tests observe
// real all-or-nothing behavior.
type fakeStore struct {
	keyring *custody.Keyring

	listings map[string]domain.RentalListing
	assets   map[string]domain.Asset
	balances map[custody.Address]uint64
	journal  []domain.JournalEntry
	parties  map[uuid.UUID]domain.Party
	notes    []domain.Notification
	noteSeq  int64
}

func newFakeStore(keyring *custody.Keyring) *fakeStore {
	return &fakeStore{
		keyring:  keyring,
		listings: make(map[string]domain.RentalListing),
		assets:   make(map[string]domain.Asset),
		balances: make(map[custody.Address]uint64),
		parties:  make(map[uuid.UUID]domain.Party),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	c := newFakeStore(s.keyring)
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.assets {
		c.assets[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.parties {
		c.parties[k] = v
	}
	c.journal = append(c.journal, s.journal...)
	c.notes = append(c.notes, s.notes...)
	c.noteSeq = s.noteSeq
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.listings = from.listings
	s.assets = from.assets
	s.balances = from.balances
	s.parties = from.parties
	s.journal = from.journal
	s.notes = from.notes
	s.noteSeq = from.noteSeq
}

func (s *fakeStore) Listings() repository.ListingRepository           { return fakeListings{s} }
func (s *fakeStore) Assets() repository.AssetRepository               { return fakeAssets{s} }
func (s *fakeStore) Funds() repository.FundsRepository                { return fakeFunds{s} }
func (s *fakeStore) Parties() repository.PartyRepository              { return fakeParties{s} }
func (s *fakeStore) Notifications() repository.NotificationRepository { return fakeNotes{s} }

func (s *fakeStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	saved := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}

type fakeListings struct{ s *fakeStore }

func (r fakeListings) Create(_ context.Context, l *domain.RentalListing) error {
	if existing, ok := r.s.listings[l.AssetID]; ok {
		if existing.IsActive || existing.Occupancy.Rented() {
			return domain.ErrListingExists
		}
	}
	r.s.listings[l.AssetID] = *l
	return nil
}

func (r fakeListings) GetByAsset(_ context.Context, assetID string) (*domain.RentalListing, error) {
	l, ok := r.s.listings[assetID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &l, nil
}

func (r fakeListings) GetByAssetForUpdate(ctx context.Context, assetID string) (*domain.RentalListing, error) {
	return r.GetByAsset(ctx, assetID)
}

func (r fakeListings) Update(_ context.Context, l *domain.RentalListing) error {
	if _, ok := r.s.listings[l.AssetID]; !ok {
		return domain.ErrListingNotFound
	}
	r.s.listings[l.AssetID] = *l
	return nil
}

func (r fakeListings) ListAvailable(_ context.Context, _, _ int32) ([]domain.RentalListing, int32, error) {
	var out []domain.RentalListing
	for _, l := range r.s.listings {
		if l.Available() {
			out = append(out, l)
		}
	}
	return out, int32(len(out)), nil
}

func (r fakeListings) ListByOwner(_ context.Context, owner uuid.UUID, _, _ int32) ([]domain.RentalListing, int32, error) {
	var out []domain.RentalListing
	for _, l := range r.s.listings {
		if l.Owner == owner {
			out = append(out, l)
		}
	}
	return out, int32(len(out)), nil
}

func (r fakeListings) ListByRenter(_ context.Context, renter uuid.UUID, _, _ int32) ([]domain.RentalListing, int32, error) {
	var out []domain.RentalListing
	for _, l := range r.s.listings {
		if cur, ok := l.Occupancy.Renter(); ok && cur == renter {
			out = append(out, l)
		}
	}
	return out, int32(len(out)), nil
}

func (r fakeListings) ListEndingBetween(_ context.Context, from, to time.Time) ([]domain.RentalListing, error) {
	var out []domain.RentalListing
	for _, l := range r.s.listings {
		if end, ok := l.Occupancy.EndTime(); ok && end.After(from) && !end.After(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeAssets struct{ s *fakeStore }

func (r fakeAssets) Register(_ context.Context, a *domain.Asset) error {
	if _, ok := r.s.assets[a.ID]; ok {
		return domain.ErrAssetExists
	}
	r.s.assets[a.ID] = *a
	return nil
}

func (r fakeAssets) Get(_ context.Context, assetID string) (*domain.Asset, error) {
	a, ok := r.s.assets[assetID]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return &a, nil
}

func (r fakeAssets) Transfer(_ context.Context, assetID string, from, to custody.Address, auth custody.Authority) error {
	if !r.s.keyring.Verify(auth, from) {
		return domain.ErrUnauthorizedTransfer
	}
	a, ok := r.s.assets[assetID]
	if !ok {
		return domain.ErrAssetNotFound
	}
	if a.Holder != from {
		return domain.ErrAssetNotHeld
	}
	a.Holder = to
	r.s.assets[assetID] = a
	return nil
}

type fakeFunds struct{ s *fakeStore }

func (r fakeFunds) EnsureAccount(_ context.Context, addr custody.Address) error {
	if _, ok := r.s.balances[addr]; !ok {
		r.s.balances[addr] = 0
	}
	return nil
}

func (r fakeFunds) Balance(_ context.Context, addr custody.Address) (uint64, error) {
	return r.s.balances[addr], nil
}

func (r fakeFunds) Deposit(_ context.Context, to custody.Address, amount uint64, memo string) error {
	r.s.balances[to] += amount
	r.s.journal = append(r.s.journal, domain.JournalEntry{
		ID: uuid.New(), To: to, Amount: amount, Memo: memo, CreatedAt: time.Now(),
	})
	return nil
}

func (r fakeFunds) Transfer(_ context.Context, from, to custody.Address, amount uint64, auth custody.Authority, memo string) error {
	if !r.s.keyring.Verify(auth, from) {
		return domain.ErrUnauthorizedTransfer
	}
	if r.s.balances[from] < amount {
		return domain.ErrInsufficientFunds
	}
	r.s.balances[from] -= amount
	r.s.balances[to] += amount
	f := from
	r.s.journal = append(r.s.journal, domain.JournalEntry{
		ID: uuid.New(), From: &f, To: to, Amount: amount, Memo: memo, CreatedAt: time.Now(),
	})
	return nil
}

func (r fakeFunds) History(_ context.Context, addr custody.Address, _, _ int32) ([]domain.JournalEntry, int32, error) {
	var out []domain.JournalEntry
	for _, e := range r.s.journal {
		if e.To == addr || (e.From != nil && *e.From == addr) {
			out = append(out, e)
		}
	}
	return out, int32(len(out)), nil
}

type fakeParties struct{ s *fakeStore }

func (r fakeParties) Create(_ context.Context, p *domain.Party) error {
	for _, existing := range r.s.parties {
		if existing.Email == p.Email {
			return errDuplicateRow
		}
	}
	r.s.parties[p.ID] = *p
	return nil
}

func (r fakeParties) GetByID(_ context.Context, id uuid.UUID) (*domain.Party, error) {
	p, ok := r.s.parties[id]
	if !ok {
		return nil, errPartyNotFound
	}
	return &p, nil
}

func (r fakeParties) GetByEmail(_ context.Context, email string) (*domain.Party, error) {
	for _, p := range r.s.parties {
		if p.Email == email {
			cp := p
			return &cp, nil
		}
	}
	return nil, errPartyNotFound
}

type fakeNotes struct{ s *fakeStore }

func (r fakeNotes) Create(_ context.Context, n *domain.Notification) error {
	r.s.noteSeq++
	n.ID = r.s.noteSeq
	n.CreatedOn = time.Now()
	r.s.notes = append(r.s.notes, *n)
	return nil
}

func (r fakeNotes) List(_ context.Context, partyID uuid.UUID, _, _ int32) ([]domain.Notification, int32, error) {
	var out []domain.Notification
	for _, n := range r.s.notes {
		if n.PartyID == partyID {
			out = append(out, n)
		}
	}
	return out, int32(len(out)), nil
}

func (r fakeNotes) MarkAsRead(_ context.Context, id int64, partyID uuid.UUID) error {
	for i, n := range r.s.notes {
		if n.ID == id && n.PartyID == partyID {
			r.s.notes[i].IsRead = true
			return nil
		}
	}
	return errNoteNotFound
}

// fixedClock is a settable time source for expiry tests.
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
