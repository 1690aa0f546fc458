// Package qrcode renders product share codes with go-qrcode.
package qrcode

import (
	"strings"

	"storefront/config"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	baseURL string
	size    int
	level   qrcode.RecoveryLevel
}

// NewQRCodeService builds the share code service from the catalog settings.
func NewQRCodeService(cfg *config.Config) service.ShareCodeService {
	return newQRCodeService(cfg.Catalog.ShareBaseURL, cfg.Catalog.QRSize, cfg.Catalog.QRRecoveryLevel)
}

func newQRCodeService(baseURL string, size int, recoveryLevel string) *qrcodeService {
	return &qrcodeService{
		baseURL: strings.TrimRight(baseURL, "/"),
		size:    size,
		level:   parseRecoveryLevel(recoveryLevel),
	}
}

func parseRecoveryLevel(level string) qrcode.RecoveryLevel {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func (s *qrcodeService) ProductLink(productID uuid.UUID) string {
	return s.baseURL + "/" + productID.String()
}

func (s *qrcodeService) ProductQR(productID uuid.UUID) ([]byte, error) {
	code, err := qrcode.New(s.ProductLink(productID), s.level)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	png, err := code.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render QR code")
	}

	return png, nil
}
