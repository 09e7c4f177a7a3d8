package payments

import (
	"strings"

	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
)

// NormalizePhone converts Kenyan mobile numbers (07.., 01.., +2547.., 2541..)
// to the 12 digit 2547XXXXXXXX / 2541XXXXXXXX form the gateway expects.
func NormalizePhone(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')':
			return -1
		default:
			return 'x'
		}
	}, strings.TrimSpace(raw))
	if strings.ContainsRune(digits, 'x') {
		return "", invalidPhone()
	}

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		digits = "254" + digits[1:]
	case len(digits) == 9 && (digits[0] == '7' || digits[0] == '1'):
		digits = "254" + digits
	}
	if len(digits) != 12 || !(strings.HasPrefix(digits, "2547") || strings.HasPrefix(digits, "2541")) {
		return "", invalidPhone()
	}
	return digits, nil
}

func invalidPhone() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "phone number must be a Kenyan mobile number such as 0712345678")
}
