package infrastructure

import (
	"crypto/rand"
	"encoding/base64"
	math "math/rand"
)

func GenerateVerificationCode() string {
	const codeLength = 8
	return GenerateRandomString(codeLength)
}

func GenerateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[math.Intn(len(charset))]
	}
	return string(b)
}

func GenerateResetCode() string {
	const codeLength = 32 // 256 bits
	codeBytes := make([]byte, codeLength)
	if _, err := rand.Read(codeBytes); err != nil {
		return GenerateRandomString(codeLength)
	}
	return base64.URLEncoding.EncodeToString(codeBytes)
}
