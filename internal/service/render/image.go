package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// pxPerMM bounds the resolution of embedded raster images.
const pxPerMM = 10

// rasterImage is a decoded image re-encoded as 8-bit PNG, ready for fpdf.
type rasterImage struct {
	png    []byte
	width  int
	height int
}

// decodeDataURL accepts "data:<type>;base64,<payload>" or a bare base64 payload.
func decodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty image")
	}
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, errors.New("malformed data URL")
		}
		if !strings.Contains(s[:comma], ";base64") {
			return nil, errors.New("data URL is not base64 encoded")
		}
		s = s[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some encoders drop the padding
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); err != nil {
			return nil, fmt.Errorf("decode base64 image: %w", err)
		}
	}
	return data, nil
}

// loadImage decodes any format imaging understands and bounds it to
// maxW x maxH millimetres at pxPerMM.
func loadImage(dataURL string, maxW, maxH float64) (*rasterImage, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Fit always returns 8-bit NRGBA, which fpdf's PNG reader requires.
	fitted := imaging.Fit(img, int(maxW*pxPerMM), int(maxH*pxPerMM), imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	b := fitted.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("image has no pixels")
	}
	return &rasterImage{png: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
}

// scaleToFit returns the largest size with the image's aspect ratio inside maxW x maxH.
func scaleToFit(width, height int, maxW, maxH float64) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	ratio := min(maxW/float64(width), maxH/float64(height))
	return float64(width) * ratio, float64(height) * ratio
}
