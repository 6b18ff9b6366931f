package label

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"shopfloor-backend/internal/model"
)

// ScanToken builds the payload encoded on an equipment scan card. The scan
// station posts it back verbatim as qr_code_data.
func ScanToken(equipmentNumber, eventType string) string {
	return fmt.Sprintf("EQ:%s:%s", strings.ToUpper(equipmentNumber), eventType)
}

// Definition returns the QR code definition row matching a scan token, so
// freshly printed cards resolve without manual data entry.
func Definition(equipmentNumber, eventType string) model.QRCodeDefinition {
	equipmentNumber = strings.ToUpper(equipmentNumber)
	return model.QRCodeDefinition{
		Code:            ScanToken(equipmentNumber, eventType),
		EventType:       eventType,
		EquipmentNumber: equipmentNumber,
		Description:     fmt.Sprintf("%s card for %s", eventType, equipmentNumber),
	}
}

// PNG renders the scan card QR image.
func PNG(equipmentNumber, eventType string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(ScanToken(equipmentNumber, eventType), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR label: %w", err)
	}
	return png, nil
}
