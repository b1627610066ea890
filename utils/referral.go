package utils

import (
	"crypto/rand"
	"math/big"
)

// referralAlphabet leaves out 0/O and 1/I/L so codes survive being read aloud.
const referralAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ReferralCodeLength is the length of generated referral codes
const ReferralCodeLength = 8

// GenerateReferralCode returns a random referral code drawn from crypto/rand
func GenerateReferralCode() (string, error) {
	max := big.NewInt(int64(len(referralAlphabet)))
	b := make([]byte, ReferralCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = referralAlphabet[n.Int64()]
	}
	return string(b), nil
}
