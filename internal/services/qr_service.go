package services

import (
	"bytes"
	"context"
	"image/png"

	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// DepositQR renders the deposit address behind a handle as a PNG QR code.
func (d *WalletDirectory) DepositQR(ctx context.Context, handle string, size int) ([]byte, *HandleResolution, error) {
	resolved, err := d.ResolveHandle(ctx, handle)
	if err != nil {
		return nil, nil, err
	}

	if size <= 0 || size > maxQRSize {
		size = defaultQRSize
	}

	qr, err := qrcode.New(resolved.ExternalAddress, qrcode.Medium)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), resolved, nil
}
