package auth

import (
	"fmt"
	"time"
)

// Storage is the key/value-with-TTL contract the revocation list needs.
// fiber.Storage implementations satisfy it.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// RevocationList remembers logged-out token IDs until the tokens would have
// expired on their own.
type RevocationList struct {
	storage Storage
	now     func() time.Time
}

func NewRevocationList(storage Storage) *RevocationList {
	return &RevocationList{storage: storage, now: time.Now}
}

func (r *RevocationList) Revoke(tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.storage.Set(revocationKey(tokenID), []byte{1}, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) IsRevoked(tokenID string) (bool, error) {
	val, err := r.storage.Get(revocationKey(tokenID))
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return len(val) > 0, nil
}

func revocationKey(tokenID string) string {
	return "revoked:" + tokenID
}
