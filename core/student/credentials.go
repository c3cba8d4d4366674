package student

import "github.com/trezcool/tuitioncenter/core"

const (
	usernamePrefix = "student_"
	usernameDigits = 4
	passwordDigits = 6
)

func lastDigits(digits string, n int) string {
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}

// DeriveCredentials builds the login of a student from their phone number:
// username is "student_" + the last 4 digits, password the last 6 digits.
// Phones with fewer digits yield shorter values; ok is false when there are no digits at all.
func DeriveCredentials(phone string) (creds Credentials, ok bool) {
	digits := core.Digits(phone)
	if digits == "" {
		return Credentials{}, false
	}
	return Credentials{
		Username: usernamePrefix + lastDigits(digits, usernameDigits),
		Password: lastDigits(digits, passwordDigits),
	}, true
}
