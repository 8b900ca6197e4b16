package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// Format selects the QR image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// DefaultQRSize is the target edge length in pixels.
const DefaultQRSize = 512

// quietZone is the blank border around the symbol, in modules.
const quietZone = 4

var (
	ErrUnsupportedFormat = errors.New("unsupported QR format")
	ErrEmptyContent      = errors.New("QR content is empty")
)

// ParseFormat maps a file extension (with or without the dot) to a Format.
func ParseFormat(ext string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(ext, "."))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ContentType returns the MIME type of the encoded image.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// QRCode encodes content in the requested format.
func QRCode(content string, size int, format Format) ([]byte, error) {
	switch format {
	case FormatPNG:
		return QRCodePNG(content, size)
	case FormatSVG:
		return QRCodeSVG(content, size)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func encodeQR(content string) (barcode.Barcode, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return code, nil
}

// QRCodePNG renders content as a PNG at most size pixels wide.
// Modules are scaled by a whole factor, so the image may be slightly smaller
// than size; it is never smaller than one pixel per module.
func QRCodePNG(content string, size int) ([]byte, error) {
	code, err := encodeQR(content)
	if err != nil {
		return nil, err
	}

	dim := code.Bounds().Dx()
	factor := max(size/(dim+2*quietZone), 1)

	scaled, err := barcode.Scale(code, dim*factor, dim*factor)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	edge := (dim + 2*quietZone) * factor
	img := image.NewGray(image.Rect(0, 0, edge, edge))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	offset := quietZone * factor
	draw.Draw(img, image.Rect(offset, offset, offset+dim*factor, offset+dim*factor), scaled, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// QRCodeSVG renders content as an SVG document with a size x size viewport.
func QRCodeSVG(content string, size int) ([]byte, error) {
	code, err := encodeQR(content)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	dim := code.Bounds().Dx()
	total := dim + 2*quietZone

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size, total, total)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, total, total)
	b.WriteString(`<path fill="#000000" d="`)
	for y := range dim {
		for x := range dim {
			if dark(code.At(x, y)) {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x+quietZone, y+quietZone)
			}
		}
	}
	b.WriteString(`"/></svg>` + "\n")

	return []byte(b.String()), nil
}

func dark(c color.Color) bool {
	gray := color.GrayModel.Convert(c).(color.Gray)
	return gray.Y < 0x80
}
