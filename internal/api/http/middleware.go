package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"nft-rental-backend/internal/security"
)

type contextKey string

const partyIDKey contextKey = "party_id"

// AuthMiddleware validates the bearer token and stashes the authenticated
// party ID on the request context. Deriving any custody authority for the
// caller happens downstream, only after this check has passed.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), partyIDKey, claims.PartyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func partyFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(partyIDKey).(uuid.UUID)
	return id, ok
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
