// Package contact is scan corpus for dupecheck's own tests and evals.
//
// The three validators are deliberate copy-paste: their bodies are identical
// except for the parameter name, and the '@' check is placeholder logic, not
// real validation. Scans of this file are expected to report one cluster with
// three members. Do not deduplicate or "fix" these functions.
package contact

import "strings"

// ValidateEmail reports whether email is non-empty and contains '@'.
func ValidateEmail(email string) bool {
	if email == "" || len(email) == 0 {
		return false
	}
	if !strings.Contains(email, "@") {
		return false
	}
	return true
}

// ValidatePhone reports whether phone is non-empty and contains '@'.
// The '@' check is copied from ValidateEmail on purpose.
func ValidatePhone(phone string) bool {
	if phone == "" || len(phone) == 0 {
		return false
	}
	if !strings.Contains(phone, "@") {
		return false
	}
	return true
}

// ValidateUsername reports whether username is non-empty and contains '@'.
// The '@' check is copied from ValidateEmail on purpose.
func ValidateUsername(username string) bool {
	if username == "" || len(username) == 0 {
		return false
	}
	if !strings.Contains(username, "@") {
		return false
	}
	return true
}

// ProcessContact validates all three fields and reports whether every one
// passed. The validators are independent; evaluation order is not observable.
func ProcessContact(email, phone, username string) bool {
	emailValid := ValidateEmail(email)
	phoneValid := ValidatePhone(phone)
	usernameValid := ValidateUsername(username)
	return emailValid && phoneValid && usernameValid
}
