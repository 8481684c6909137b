package handlers

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phoneRe = regexp.MustCompile(`^\d{10}$`)
)

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

// validZipCode accepts 5-digit or ZIP+4 US codes.
func validZipCode(zip string) bool {
	return zipRe.MatchString(zip)
}

// validPhone accepts 10 US digits after stripping common formatting.
func validPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(phone)
	return phoneRe.MatchString(cleaned)
}

func validImageType(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}

type leadInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	ZipCode string `json:"zipCode"`
}

// validateLead checks the contact form fields, returning one message per
// failing field.
func validateLead(in leadInput) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}

	switch {
	case strings.TrimSpace(in.Email) == "":
		errs["email"] = "Email is required"
	case !validEmail(in.Email):
		errs["email"] = "Please enter a valid email address"
	}

	switch {
	case strings.TrimSpace(in.ZipCode) == "":
		errs["zipCode"] = "Zip code is required"
	case !validZipCode(in.ZipCode):
		errs["zipCode"] = "Please enter a valid US zip code (e.g., 12345 or 12345-6789)"
	}

	if phone := strings.TrimSpace(in.Phone); phone != "" && !validPhone(phone) {
		errs["phone"] = "Please enter a valid 10-digit phone number"
	}

	return errs
}
