package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/domain"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
	"nft-rental-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	store   repository.Store
	keyring *custody.Keyring
	tokens  security.TokenManager
}

func NewAuthService(store repository.Store, keyring *custody.Keyring, tokens security.TokenManager) AuthService {
	return &authService{store: store, keyring: keyring, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*domain.Party, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	id := uuid.New()
	party := &domain.Party{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Address:      s.keyring.PartyAddressFor(id),
		CreatedOn:    time.Now().UTC(),
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Parties().Create(ctx, party); err != nil {
			return err
		}
		return tx.Funds().EnsureAccount(ctx, party.Address)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(party.ID, party.Email)
	if err != nil {
		return nil, "", err
	}

	logger.Info("Party signed up", "party_id", party.ID, "address", party.Address)
	return party, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Party, string, error) {
	party, err := s.store.Parties().GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(party.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(party.ID, party.Email)
	if err != nil {
		return nil, "", err
	}
	return party, token, nil
}
