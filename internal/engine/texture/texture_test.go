package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

// tgaFile builds a 2x2 24-bit TGA with the given type and pixel payload.
func tgaFile(imageType byte, descriptor byte, payload ...byte) []byte {
	header := make([]byte, tgaHeaderSize)
	header[2] = imageType
	header[12] = 2
	header[14] = 2
	header[16] = 24
	header[17] = descriptor
	return append(header, payload...)
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestDecodeTGA(t *testing.T) {
	// BGR order: red, green, blue, white.
	raw := []byte{0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255, 255}

	tests := []struct {
		name string
		data []byte
		want [4]color.RGBA // (0,0) (1,0) (0,1) (1,1)
	}{
		{
			name: "uncompressed bottom-up",
			data: tgaFile(TGATypeUncompressed, 0, raw...),
			want: [4]color.RGBA{blue, white, red, green},
		},
		{
			name: "uncompressed top-down",
			data: tgaFile(TGATypeUncompressed, 0x20, raw...),
			want: [4]color.RGBA{red, green, blue, white},
		},
		{
			name: "rle run and raw packet",
			// Run of 2 red, then a raw packet of blue and white.
			data: tgaFile(TGATypeRLE, 0x20, 0x81, 0, 0, 255, 0x01, 255, 0, 0, 255, 255, 255),
			want: [4]color.RGBA{red, red, blue, white},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeTGA(tt.data)
			if err != nil {
				t.Fatalf("DecodeTGA failed: %v", err)
			}
			got := [4]color.RGBA{img.RGBAAt(0, 0), img.RGBAAt(1, 0), img.RGBAAt(0, 1), img.RGBAAt(1, 1)}
			if got != tt.want {
				t.Errorf("pixels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	colorMapped := tgaFile(TGATypeUncompressed, 0)
	colorMapped[1] = 1
	grey := tgaFile(TGATypeUncompressed, 0)
	grey[16] = 8

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, ErrTGATruncated},
		{"truncated pixels", tgaFile(TGATypeUncompressed, 0, 1, 2, 3), ErrTGATruncated},
		{"color mapped", colorMapped, ErrTGAUnsupported},
		{"wrong type", tgaFile(3, 0), ErrTGAUnsupported},
		{"8 bit", grey, ErrTGAUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeByExtension(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, green)

	var pngData, bmpData bytes.Buffer
	if err := png.Encode(&pngData, src); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpData, src); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"wood.PNG", pngData.Bytes()},
		{"textures/wood.bmp", bmpData.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.name, tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Rect.Dx() != 3 || img.Rect.Dy() != 2 {
				t.Errorf("size = %v, want 3x2", img.Rect)
			}
			if c := img.RGBAAt(2, 1); c != green {
				t.Errorf("pixel (2,1) = %v, want %v", c, green)
			}
		})
	}

	if _, err := Decode("a.gif", nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("gif error = %v, want ErrUnknownFormat", err)
	}
	if _, err := Decode("a.png", []byte("nope")); err == nil {
		t.Error("expected error for corrupt png")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name       string
		w, h, max  int
		wantW, wnH int
	}{
		{"within", 64, 32, 64, 64, 32},
		{"disabled", 512, 512, 0, 512, 512},
		{"wide", 512, 256, 128, 128, 64},
		{"tall", 100, 400, 200, 50, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := Fit(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.max)
			if img.Rect.Dx() != tt.wantW || img.Rect.Dy() != tt.wnH {
				t.Errorf("Fit = %dx%d, want %dx%d", img.Rect.Dx(), img.Rect.Dy(), tt.wantW, tt.wnH)
			}
		})
	}
}

func TestSolidAndToRGBA(t *testing.T) {
	img := Solid(white)
	if img.Rect.Dx() != 1 || img.RGBAAt(0, 0) != white {
		t.Errorf("Solid = %v", img)
	}
	if ToRGBA(img) != img {
		t.Error("ToRGBA should return *image.RGBA at origin unchanged")
	}

	sub := image.NewRGBA(image.Rect(5, 5, 7, 7))
	sub.SetRGBA(6, 6, red)
	got := ToRGBA(sub)
	if got.Rect.Min != (image.Point{}) || got.RGBAAt(1, 1) != red {
		t.Errorf("ToRGBA did not rebase to origin: %v", got.Rect)
	}
}
