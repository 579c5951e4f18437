package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	UploadCodeAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	VerificationCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateCode returns n characters picked uniformly from alphabet using
// crypto/rand.
func GenerateCode(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

func GenerateUploadCode(n int) (string, error) {
	return GenerateCode(UploadCodeAlphabet, n)
}

func GenerateVerificationCode(n int) (string, error) {
	return GenerateCode(VerificationCodeAlphabet, n)
}
