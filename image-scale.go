package main

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

type decodedImage struct {
	img    image.Image
	format imaging.Format
}

func (d *decodedImage) Width() int {
	return d.img.Bounds().Dx()
}

func (d *decodedImage) Height() int {
	return d.img.Bounds().Dy()
}

// decodeImage sniffs the format from the data itself, the object key extension is not consulted.
func decodeImage(b []byte) (*decodedImage, error) {
	img, name, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("%w: format %q: %v", ErrDecode, name, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimensions %dx%d", ErrDecode, bounds.Dx(), bounds.Dy())
	}

	return &decodedImage{img: img, format: format}, nil
}

// targetSize halves both dimensions, truncating. A dimension of 1 would become 0, which is
// rejected rather than clamped.
func targetSize(width, height int) (int, int, error) {
	w, h := width/2, height/2
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: %dx%d from %dx%d", ErrInvalidTargetSize, w, h, width, height)
	}
	return w, h, nil
}

func halfScale(src *decodedImage) (*decodedImage, error) {
	w, h, err := targetSize(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}

	return &decodedImage{
		img:    imaging.Resize(src.img, w, h, imaging.Lanczos),
		format: src.format,
	}, nil
}

// encodeImage returns a copy of the encoded bytes, the pooled buffer never leaves this function.
func encodeImage(d *decodedImage) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := imaging.Encode(buf, d.img, d.format); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, d.format, err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
