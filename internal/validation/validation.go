// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

// Field bounds, in characters.
const (
	UsernameMin = 3
	UsernameMax = 20
	PasswordMin = 3
	PasswordMax = 100
	// PasswordMaxBytes is bcrypt's input limit; multibyte passwords hit it before PasswordMax.
	PasswordMaxBytes = 72
	EmailMax         = 100
	NicknameMin      = 2
	NicknameMax      = 20
	TitleMax         = models.ArticleTitleMaxLen
	ContentMax       = models.ArticleContentMaxLen
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func length(field, value string, minLen, maxLen int) error {
	if IsBlank(value) {
		return fmt.Errorf("%s is required", field)
	}
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		return fmt.Errorf("%s must be between %d and %d characters", field, minLen, maxLen)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	return length("username", username, UsernameMin, UsernameMax)
}

// ValidatePassword checks password length only; strength rules are left to the user.
func ValidatePassword(password string) error {
	if err := length("password", password, PasswordMin, PasswordMax); err != nil {
		return err
	}
	if len(password) > PasswordMaxBytes {
		return fmt.Errorf("password must not exceed %d bytes", PasswordMaxBytes)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if IsBlank(email) {
		return fmt.Errorf("email is required")
	}
	if len(email) > EmailMax {
		return fmt.Errorf("email must not exceed %d characters", EmailMax)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateNickname checks if a nickname meets requirements
func ValidateNickname(nickname string) error {
	return length("nickname", nickname, NicknameMin, NicknameMax)
}

// ValidateTitle checks an article title.
func ValidateTitle(title string) error {
	return length("title", title, 1, TitleMax)
}

// ValidateContent checks an article body.
func ValidateContent(content string) error {
	return length("content", content, 1, ContentMax)
}
