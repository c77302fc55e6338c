package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenSize = 20

// hashCost is a variable so tests can lower it.
var hashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// Malformed hashes are reported as errors, a plain mismatch is not.
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// SimulatePasswordCheck runs a bcrypt comparison against a fixed hash, so a
// login for an unknown email takes as long as one with a wrong password.
func SimulatePasswordCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("qaboard-no-such-user")
	})
	_, _ = CheckPassword(dummyHash, password)
}

// NewResetToken returns a random token to be mailed to the user and the
// hash of it that is stored in the database.
func NewResetToken() (token string, hashed string, err error) {
	token, err = common.MakeRandHexString(resetTokenSize)
	if err != nil {
		return "", "", err
	}
	return token, HashResetToken(token), nil
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
