package custody

import (
	"crypto/hmac"
	"encoding/hex"
	"hash"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Address identifies one custody account: hex of a 32-byte digest over
// stable seeds, so the same seeds always yield the same account.
type Address string

// Authority is a capability proving control over one custody address.
// Vault authorities are derived by the protocol from the escrow secret;
// party authorities are issued only after the caller authenticates. The
// proof is never persisted — it is threaded explicitly into each transfer.
type Authority struct {
	Address Address
	proof   []byte
}

// Derivation seed labels. One asset vault and one funds vault exist per
// listed asset; party accounts hang off the party ID.
const (
	seedAssetVault = "escrow"
	seedFundsVault = "vault"
	seedParty      = "party"
)

// Keyring derives deterministic custody addresses and issues and verifies
// the authority capabilities that control them.
type Keyring struct {
	secret []byte
}

func NewKeyring(secret string) *Keyring {
	return &Keyring{secret: []byte(secret)}
}

func deriveAddress(labels ...string) Address {
	h := sha3.New256()
	for _, l := range labels {
		h.Write([]byte(l))
		h.Write([]byte{0})
	}
	return Address(hex.EncodeToString(h.Sum(nil)))
}

// AssetVaultFor returns the account that holds the asset unit while the
// asset is listed and not rented.
func (k *Keyring) AssetVaultFor(assetID string) Address {
	return deriveAddress(seedAssetVault, assetID)
}

// FundsVaultFor returns the account that holds collateral while rented.
func (k *Keyring) FundsVaultFor(assetID string) Address {
	return deriveAddress(seedFundsVault, assetID)
}

// PartyAddressFor returns a party's own custody account.
func (k *Keyring) PartyAddressFor(partyID uuid.UUID) Address {
	return deriveAddress(seedParty, partyID.String())
}

// AuthorityFor issues the capability controlling addr. For vault addresses
// this is the protocol's own signing authority; no human key exists for
// them.
func (k *Keyring) AuthorityFor(addr Address) Authority {
	return Authority{Address: addr, proof: k.proofFor(addr)}
}

func (k *Keyring) proofFor(addr Address) []byte {
	mac := hmac.New(func() hash.Hash { return sha3.New256() }, k.secret)
	mac.Write([]byte(addr))
	return mac.Sum(nil)
}

// Verify reports whether auth controls the from address. Transfer
// primitives call this before moving anything out of an account.
func (k *Keyring) Verify(auth Authority, from Address) bool {
	return auth.Address == from && hmac.Equal(auth.proof, k.proofFor(from))
}
