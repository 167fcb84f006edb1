package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.  Costs outside
// bcrypt's range fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), clampCost(cost))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// VerifyPassword compares a bcrypt hash and a plain password in constant
// time.  A malformed hash never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// dummyHashes caches one throwaway hash per bcrypt cost.
var dummyHashes sync.Map

func dummyHash(cost int) []byte {
	cost = clampCost(cost)
	if h, ok := dummyHashes.Load(cost); ok {
		return h.([]byte)
	}
	h, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	actual, _ := dummyHashes.LoadOrStore(cost, h)
	return actual.([]byte)
}

// BurnPasswordCheck spends one bcrypt comparison on a throwaway hash of
// the given cost, so a login for an unknown email takes as long as one
// with a wrong password.  cost must be the cost real hashes are made with.
func BurnPasswordCheck(plain string, cost int) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(cost), []byte(plain))
}
