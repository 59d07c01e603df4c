// Package tickets renders booking vouchers: a one-page PDF carrying a signed QR code
// that front desks can scan to look the booking up.
package tickets

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"

	"hospitality/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const dateLayout = "2006-01-02"

func sign(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// GenerateQRPayload returns bookingID|bookingType|checkInDate|signature.
func GenerateQRPayload(b models.Booking, secret string) string {
	data := fmt.Sprintf("%s|%s|%s", b.ID, b.BookingType, b.CheckInDate.UTC().Format(dateLayout))
	return data + "|" + sign(data, secret)
}

// RenderVoucher builds the PDF voucher for b.
func RenderVoucher(b models.Booking, secret string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(GenerateQRPayload(b, secret), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking "+b.ID, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, voucherTitle(b.BookingType))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	for _, line := range voucherLines(b) {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher: %w", err)
	}
	return buf.Bytes(), nil
}

func voucherTitle(t models.BookingType) string {
	if t == models.RestaurantBooking {
		return "Table Reservation"
	}
	return "Hotel Reservation"
}

func voucherLines(b models.Booking) []string {
	lines := []string{
		"Booking ID: " + b.ID,
		"Guest: " + b.FullName,
		"Status: " + string(b.Status),
		"Check-in: " + b.CheckInDate.UTC().Format(dateLayout),
		"Check-out: " + b.CheckOutDate.UTC().Format(dateLayout),
		"Arrival: " + b.TimeOfArrival.UTC().Format("2006-01-02 15:04"),
		fmt.Sprintf("Guests: %d adult(s), %d child(ren)", b.Adult, b.Children),
	}
	if b.TableNumber != nil {
		lines = append(lines, "Table: "+strconv.Itoa(*b.TableNumber))
	}
	if b.RoomID != "" {
		lines = append(lines, "Room: "+b.RoomID)
	}
	if b.TotalPrice != nil {
		lines = append(lines, fmt.Sprintf("Total: %.2f", *b.TotalPrice))
	}
	return lines
}
