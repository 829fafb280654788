package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateConfirmationCode создает одноразовый код подтверждения.
// Код уходит пользователю по почте, в БД хранится только bcrypt-хэш.
func GenerateConfirmationCode() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HashConfirmationCode хэширует код для хранения
func HashConfirmationCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash confirmation code: %w", err)
	}
	return string(hash), nil
}

// CheckConfirmationCode сверяет присланный код с хэшем из БД
func CheckConfirmationCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
