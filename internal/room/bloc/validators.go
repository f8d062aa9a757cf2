package bloc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	minFullNameLength = 3
	minPhoneDigits    = 6
)

var phonePattern = regexp.MustCompile(`^\+?(\(\d{1,4}\))?[\d\s\-().]{6,}$`)

func ValidateFullName(fullName string) error {
	if utf8.RuneCountInString(fullName) < minFullNameLength {
		return domain.ErrFullNameTooShort
	}
	return nil
}

func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return domain.ErrAddressEmpty
	}
	return nil
}

func ValidatePhoneNumber(phone string) error {
	if !phonePattern.MatchString(phone) {
		return domain.ErrPhoneInvalid
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return domain.ErrPhoneInvalid
	}
	return nil
}

// sameError compares errors by message; nil only equals nil.
func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Error() == b.Error()
}
