package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/arnold/fitchallenge-api/internal/models"
	"gorm.io/gorm"
)

const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// maxInviteCodeAttempts bounds both the collision loop and the insert retries.
	maxInviteCodeAttempts = 10
)

var errInviteCodesExhausted = fmt.Errorf("no free invite code after %d attempts", maxInviteCodeAttempts)

// RandomInviteCode returns six uppercase base-36 characters.
func RandomInviteCode() (string, error) {
	base := big.NewInt(int64(len(inviteCodeAlphabet)))
	var sb strings.Builder
	sb.Grow(inviteCodeLength)
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		sb.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeInviteCode upper-cases user input. Lookups themselves are exact.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validInviteCode(code string) bool {
	if len(code) != inviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(inviteCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// allocateInviteCode draws codes until one is well formed and unused.
func allocateInviteCode(tx *gorm.DB, gen func() (string, error)) (string, error) {
	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		code = strings.ToUpper(code)
		if !validInviteCode(code) {
			continue
		}

		var taken int64
		if err := tx.Model(&models.Challenge{}).Where("invite_code = ?", code).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if taken == 0 {
			return code, nil
		}
	}
	return "", errInviteCodesExhausted
}
