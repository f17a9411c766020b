package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// InviteCodeAlphabet leaves out 0, O, 1 and I so codes can be read aloud
// and typed on a child's device without confusion.
const InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const InviteCodeLength = 4

// GenerateInviteCode draws InviteCodeLength characters uniformly from the alphabet
func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	max := big.NewInt(int64(len(InviteCodeAlphabet)))

	for i := range code {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code[i] = InviteCodeAlphabet[num.Int64()]
	}

	return string(code), nil
}

// NormalizeInviteCode trims and upper-cases user input
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidInviteCode checks length and alphabet of an already normalised code
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(InviteCodeAlphabet, c) {
			return false
		}
	}
	return true
}
