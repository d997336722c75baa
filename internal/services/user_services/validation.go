package user_services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-aichat/internal/domain"
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex    = regexp.MustCompile(`^1[3-9]\d{9}$`)
	passwordRegex = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,}$`)
	hasLetter     = regexp.MustCompile(`[A-Za-z]`)
	hasDigit      = regexp.MustCompile(`\d`)
)

func ValidEmail(email string) bool { return emailRegex.MatchString(email) }

// ValidPhone accepts mainland-China mobile numbers.
func ValidPhone(phone string) bool { return phoneRegex.MatchString(phone) }

// ValidPassword requires at least 8 characters with a letter and a digit.
func ValidPassword(password string) bool {
	return passwordRegex.MatchString(password) &&
		hasLetter.MatchString(password) &&
		hasDigit.MatchString(password)
}

func validateRegisterForm(f *RegisterForm) string {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)

	if n := utf8.RuneCountInString(f.Username); n < 3 || n > 20 {
		return "username must be 3-20 characters"
	}

	switch f.Type {
	case domain.AccountTypeEmail:
		if f.Email == "" {
			return "email is required"
		}
	case domain.AccountTypePhone:
		if f.Phone == "" {
			return "phone number is required"
		}
	default:
		return "account type must be email or phone"
	}
	if f.Email != "" && !ValidEmail(f.Email) {
		return "invalid email address"
	}
	if f.Phone != "" && !ValidPhone(f.Phone) {
		return "invalid phone number"
	}

	if !ValidPassword(f.Password) {
		return "password must be at least 8 characters and contain a letter and a digit"
	}
	if f.Password != f.ConfirmPassword {
		return "passwords do not match"
	}
	return ""
}

func validateLoginForm(f *LoginForm) string {
	f.Account = strings.TrimSpace(f.Account)
	switch f.Type {
	case domain.AccountTypeEmail, domain.AccountTypePhone:
	default:
		return "account type must be email or phone"
	}
	if f.Account == "" || f.Password == "" {
		return "account and password are required"
	}
	return ""
}
