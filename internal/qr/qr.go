// SPDX-License-Identifier: MIT

// Package qr renders pairing codes as scannable PNG images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer encodes pairing codes into PNG data URLs the API can hand to
// browsers directly.
type Renderer struct {
	// Size is the image edge length in pixels.
	Size int
}

// NewRenderer returns a renderer with the default 256px size.
func NewRenderer() *Renderer {
	return &Renderer{Size: 256}
}

// Render implements ports.CodeRenderer.
func (r *Renderer) Render(code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("empty pairing code")
	}
	size := r.Size
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("encode pairing code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
