package tickets

import (
	"crypto/hmac"
	"errors"
	"strings"
)

var (
	ErrInvalidFormat    = errors.New("invalid QR format")
	ErrInvalidSignature = errors.New("invalid signature")
)

// VerifyVoucherQR checks a payload produced by GenerateQRPayload and returns the booking id.
func VerifyVoucherQR(payload, secret string) (bookingID string, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return "", ErrInvalidFormat
	}

	data := strings.Join(parts[:3], "|")
	if !hmac.Equal([]byte(parts[3]), []byte(sign(data, secret))) {
		return "", ErrInvalidSignature
	}
	return parts[0], nil
}
