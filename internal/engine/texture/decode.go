// Package texture decodes image files into RGBA pixels for GPU upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrUnknownFormat is returned for file extensions without a decoder.
var ErrUnknownFormat = errors.New("unknown image format")

// Decode decodes data according to the extension of name.
func Decode(name string, data []byte) (*image.RGBA, error) {
	ext := strings.ToLower(path.Ext(name))

	var (
		img image.Image
		err error
	)
	switch ext {
	case ".tga":
		return DecodeTGA(data)
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case ".bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
	case ".webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image.Image to *image.RGBA with origin (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// Fit scales img down so neither side exceeds maxSize. Images already
// within the limit, or a maxSize <= 0, are returned unchanged.
func Fit(img *image.RGBA, maxSize int) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, img.Rect, draw.Src, nil)
	return dst
}

// Solid returns a 1x1 image of c.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}
