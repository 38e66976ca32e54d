// services/qrcode_service.go
package services

import (
	"os"

	"github.com/skip2/go-qrcode"
)

// GenerateJoinCodeQR renders a joining code as a QR image pointing at the
// join page, so the creator can hand a phone-scannable invite to a buddy.
func GenerateJoinCodeQR(code string, size int) ([]byte, error) {
	applicationURL := os.Getenv("APPLICATION_URL")
	if applicationURL == "" {
		applicationURL = "http://localhost:8080" // Default for local testing
	}

	png, err := qrcode.Encode(applicationURL+"/match-with-your-buddy?action=join&code="+code, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
