// Package services: services/validation.go
// Shared validation policy for uploaded files and partner identity
// fields. There is exactly one file policy implementation; the two
// upload paths configure it with their own allowed MIME types.
package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ----------------------- file validation -----------------------

// MaxUploadSize is the shared upload size limit (5 MB).
const MaxUploadSize = 5 * 1024 * 1024

// FilePolicy is the single, shared validation policy for uploaded
// files: an allowed MIME type set plus a maximum size in bytes.
type FilePolicy struct {
	AllowedTypes map[string]bool
	MaxSize      int64
}

// ImageFilePolicy validates image uploads (collaborator logos,
// participant photos).
var ImageFilePolicy = FilePolicy{
	AllowedTypes: map[string]bool{
		"image/png":       true,
		"image/jpeg":      true,
		"application/jpg": true,
	},
	MaxSize: MaxUploadSize,
}

// DocumentFilePolicy validates general uploads from the upload form,
// which also accepts PDFs.
var DocumentFilePolicy = FilePolicy{
	AllowedTypes: map[string]bool{
		"image/png":       true,
		"image/jpeg":      true,
		"application/pdf": true,
	},
	MaxSize: MaxUploadSize,
}

// ValidateFile checks a file's MIME type and size against the policy.
func (p FilePolicy) ValidateFile(contentType string, size int64) error {
	if !p.AllowedTypes[contentType] {
		return fmt.Errorf("file type %q is not allowed", contentType)
	}
	if size > p.MaxSize {
		return fmt.Errorf("file exceeds the %d MB size limit", p.MaxSize/(1024*1024))
	}
	return nil
}

// ----------------------- identity validation -----------------------

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	dniPattern   = regexp.MustCompile(`^[0-9]{8}[A-Za-z]$`)
	phonePattern = regexp.MustCompile(`^[+]?[0-9]{9,15}$`)
)

// dniLetters maps the remainder of the DNI number mod 23 to its control letter.
const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidateDNI checks a Spanish DNI: eight digits plus the matching
// control letter.
func ValidateDNI(dni string) error {
	dni = strings.ToUpper(strings.TrimSpace(dni))
	if !dniPattern.MatchString(dni) {
		return errors.New("invalid DNI format")
	}
	number := 0
	for _, r := range dni[:8] {
		number = number*10 + int(r-'0')
	}
	if dniLetters[number%23] != dni[8] {
		return errors.New("DNI control letter does not match")
	}
	return nil
}

// ValidatePhone checks a phone number: optional leading +, 9 to 15 digits.
func ValidatePhone(phone string) error {
	cleaned := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !phonePattern.MatchString(cleaned) {
		return errors.New("invalid phone number")
	}
	return nil
}

// ValidateIBAN checks an IBAN account number using the standard
// mod-97 checksum after moving the country prefix to the end.
func ValidateIBAN(iban string) error {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
	if len(cleaned) < 15 || len(cleaned) > 34 {
		return errors.New("invalid IBAN length")
	}
	rearranged := cleaned[4:] + cleaned[:4]
	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			remainder = (remainder*100 + int(r-'A'+10)) % 97
		default:
			return errors.New("invalid IBAN character")
		}
	}
	if remainder != 1 {
		return errors.New("IBAN checksum failed")
	}
	return nil
}
