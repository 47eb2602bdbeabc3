package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/skip2/go-qrcode"

	"ms-booking/internal/models"
)

// Generator renders a booking confirmation QR. The payload is the booking
// record encrypted with a service secret so gate scanners can verify it
// offline without exposing holder contact details.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// ConfirmationQR returns a 256x256 PNG for the booking.
func (g *Generator) ConfirmationQR(b models.Booking) ([]byte, error) {
	payload := struct {
		BookingID   string `json:"booking_id"`
		Reference   string `json:"reference"`
		EventID     string `json:"event_id"`
		TicketCount int    `json:"ticket_count"`
		Status      string `json:"status"`
	}{
		BookingID:   b.BookingID,
		Reference:   b.Reference,
		EventID:     b.EventID,
		TicketCount: b.TicketCount,
		Status:      string(b.Status),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
