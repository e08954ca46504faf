// utils/qrcode.go
package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DepositQR encodes the deposit payment payload (account + reference) as a
// QR code and returns it as a base64 PNG data URI, ready to embed in the
// deposit-instructions response.
func DepositQR(bank, accountNumber, reference string, amount float64) (string, error) {
	payload := fmt.Sprintf("bank=%s;account=%s;reference=%s;amount=%.2f", bank, accountNumber, reference, amount)

	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR payload: %w", err)
	}

	code, err = barcode.Scale(code, 256, 256)
	if err != nil {
		return "", fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", fmt.Errorf("failed to render QR png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
