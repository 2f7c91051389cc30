package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// TGA errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA")
)

// tgaHeader holds the fields of the 18-byte TGA header that matter here.
type tgaHeader struct {
	idLength      int
	colorMapType  byte
	imageType     byte
	width, height int
	bytesPerPixel int
	topToBottom   bool
}

func readTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, ErrTGATruncated
	}
	h := tgaHeader{
		idLength:      int(data[0]),
		colorMapType:  data[1],
		imageType:     data[2],
		width:         int(data[12]) | int(data[13])<<8,
		height:        int(data[14]) | int(data[15])<<8,
		bytesPerPixel: int(data[16]) / 8,
		// Bit 5 of the descriptor marks top-to-bottom row order.
		topToBottom: data[17]&0x20 != 0,
	}

	if h.colorMapType != 0 {
		return h, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE {
		return h, fmt.Errorf("%w: type %d", ErrTGAUnsupported, h.imageType)
	}
	if h.bytesPerPixel != 3 && h.bytesPerPixel != 4 {
		return h, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, h.bytesPerPixel*8)
	}
	return h, nil
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// files with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := readTGAHeader(data)
	if err != nil {
		return nil, err
	}

	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}
	px := &tgaPixels{
		img:  image.NewRGBA(image.Rect(0, 0, h.width, h.height)),
		h:    h,
		data: data[offset:],
	}

	if h.imageType == TGATypeUncompressed {
		if len(px.data) < h.width*h.height*h.bytesPerPixel {
			return nil, ErrTGATruncated
		}
		for px.index < h.width*h.height {
			px.put(px.read())
		}
		return px.img, nil
	}

	px.decodeRLE()
	return px.img, nil
}

// tgaPixels walks the pixel stream in file order.
type tgaPixels struct {
	img   *image.RGBA
	h     tgaHeader
	data  []byte
	pos   int
	index int
}

func (p *tgaPixels) available() bool {
	return p.pos+p.h.bytesPerPixel <= len(p.data)
}

// read consumes one BGR(A) pixel.
func (p *tgaPixels) read() color.RGBA {
	d := p.data[p.pos:]
	c := color.RGBA{R: d[2], G: d[1], B: d[0], A: 255}
	if p.h.bytesPerPixel == 4 {
		c.A = d[3]
	}
	p.pos += p.h.bytesPerPixel
	return c
}

// put stores c at the next pixel position.
func (p *tgaPixels) put(c color.RGBA) {
	x := p.index % p.h.width
	y := p.index / p.h.width
	if !p.h.topToBottom {
		y = p.h.height - 1 - y
	}
	p.img.SetRGBA(x, y, c)
	p.index++
}

// decodeRLE stops quietly at the end of truncated data.
func (p *tgaPixels) decodeRLE() {
	total := p.h.width * p.h.height
	for p.index < total && p.pos < len(p.data) {
		packet := p.data[p.pos]
		p.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if !p.available() {
				return
			}
			c := p.read()
			for i := 0; i < count && p.index < total; i++ {
				p.put(c)
			}
			continue
		}

		for i := 0; i < count && p.index < total; i++ {
			if !p.available() {
				return
			}
			p.put(p.read())
		}
	}
}
