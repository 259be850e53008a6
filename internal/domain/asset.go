package domain

import (
	"time"

	"nft-rental-backend/internal/custody"
)

type AssetKind string

const (
	// AssetKindUnique is a one-of-one asset: exactly one unit exists.
	// Only unique assets may be listed for rental.
	AssetKindUnique AssetKind = "UNIQUE"
)

// Asset is the identity metadata of a managed asset plus its current
// custody holder. Metadata is validated once at listing time and trusted
// thereafter.
type Asset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	URI       string          `json:"uri"`
	Kind      AssetKind       `json:"kind"`
	Holder    custody.Address `json:"holder"`
	CreatedAt time.Time       `json:"created_at"`
}
