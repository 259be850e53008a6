package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"nft-rental-backend/internal/security"
)

// NewRouter wires every API route. All routes except signup, login and the
// public listing reads require a bearer token.
func NewRouter(
	tokens security.TokenManager,
	authHandler *AuthHandler,
	listingHandler *ListingHandler,
	rentalHandler *RentalHandler,
	walletHandler *WalletHandler,
) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/listings", listingHandler.Browse).Methods(http.MethodGet)
	api.HandleFunc("/listings/{assetID}", listingHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/assets/{assetID}", walletHandler.GetAsset).Methods(http.MethodGet)

	// Authenticated
	auth := api.NewRoute().Subrouter()
	auth.Use(AuthMiddleware(tokens))
	auth.HandleFunc("/assets", walletHandler.RegisterAsset).Methods(http.MethodPost)
	auth.HandleFunc("/funds/deposit", walletHandler.Deposit).Methods(http.MethodPost)
	auth.HandleFunc("/funds/balance", walletHandler.Balance).Methods(http.MethodGet)
	auth.HandleFunc("/funds/history", walletHandler.History).Methods(http.MethodGet)
	auth.HandleFunc("/listings", listingHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/listings/{assetID}", listingHandler.Unlist).Methods(http.MethodDelete)
	auth.HandleFunc("/listings/{assetID}/rent", rentalHandler.Rent).Methods(http.MethodPost)
	auth.HandleFunc("/listings/{assetID}/return", rentalHandler.Return).Methods(http.MethodPost)
	auth.HandleFunc("/listings/{assetID}/claim", rentalHandler.ClaimExpired).Methods(http.MethodPost)
	auth.HandleFunc("/rentals", listingHandler.ListRentals).Methods(http.MethodGet)
	auth.HandleFunc("/lendings", listingHandler.ListLendings).Methods(http.MethodGet)
	auth.HandleFunc("/notifications", walletHandler.ListNotifications).Methods(http.MethodGet)
	auth.HandleFunc("/notifications/{id}/read", walletHandler.MarkNotificationRead).Methods(http.MethodPost)

	return r
}
