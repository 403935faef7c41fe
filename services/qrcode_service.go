// services/qrcode_service.go
package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder abstracts the QR encoding call so tests can stub it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateEventQRCode renders a PNG QR code pointing at an event's URL,
// for printed posters and the event detail page.
func GenerateEventQRCode(eventURL string, size int, encode QRCodeEncoder) ([]byte, error) {
	if eventURL == "" {
		return nil, errors.New("event URL is empty")
	}
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	png, err := encode(eventURL, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
