package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxUsernameLength = 150
	maxEmailLength    = 254
	maxSlugLength     = 50
	maxNameLength     = 256
)

var (
	// Первый символ - буква, дальше буквы, цифры, дефис, подчеркивание, точка
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-_.]{1,20}$`)
	slugRegexp     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidateUsername проверяет формат имени пользователя.
// Имя "me" зарезервировано под маршрут профиля и запрещено
// независимо от регистра.
func ValidateUsername(username string) error {
	if strings.EqualFold(username, "me") {
		return fmt.Errorf("username %q is reserved", username)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username exceeds %d characters", maxUsernameLength)
	}
	if !usernameRegexp.MatchString(username) {
		return fmt.Errorf("username %q has invalid format", username)
	}
	return nil
}

// ValidateEmail проверяет длину email; формат проверяет binding-тег
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email exceeds %d characters", maxEmailLength)
	}
	return nil
}

// ValidateSlug проверяет формат slug категории или жанра
func ValidateSlug(slug string) error {
	if len(slug) > maxSlugLength {
		return fmt.Errorf("slug exceeds %d characters", maxSlugLength)
	}
	if !slugRegexp.MatchString(slug) {
		return fmt.Errorf("slug %q has invalid format", slug)
	}
	return nil
}

// ValidateName проверяет длину имени категории, жанра или произведения
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	return nil
}

// ValidateYear запрещает год выхода произведения в будущем
func ValidateYear(year int) error {
	current := time.Now().Year()
	if year > current {
		return fmt.Errorf("year %d is in the future", year)
	}
	return nil
}
