package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// PartyClaims carries the authenticated party identity.
type PartyClaims struct {
	PartyID uuid.UUID `json:"party_id"`
	Email   string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateAccessToken(partyID uuid.UUID, email string) (string, error)
	ValidateToken(tokenString string) (*PartyClaims, error)
}

type tokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiryMinutes int) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

func (m *tokenManager) GenerateAccessToken(partyID uuid.UUID, email string) (string, error) {
	claims := PartyClaims{
		PartyID: partyID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   partyID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "nft-rental-backend",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*PartyClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PartyClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*PartyClaims); ok && token.Valid {
		if claims.PartyID == uuid.Nil && claims.Subject != "" {
			if id, err := uuid.Parse(claims.Subject); err == nil {
				claims.PartyID = id
			}
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
