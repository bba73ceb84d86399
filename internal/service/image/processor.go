package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
)

const (
	defaultMaxWidth     = 1280
	defaultMaxSizeBytes = 1 * 1024 * 1024
	defaultQuality      = 80
	minWidth            = 320
)

// Processor уменьшает картинку перед отправкой: ширина не больше maxWidth, JPEG не больше maxSizeByte.
type Processor struct {
	maxWidth    int
	maxSizeByte int
	quality     int
}

func NewProcessor() *Processor {
	return &Processor{
		maxWidth:    defaultMaxWidth,
		maxSizeByte: defaultMaxSizeBytes,
		quality:     defaultQuality,
	}
}

// Process декодирует PNG/JPEG и возвращает пережатый JPEG.
// Если исходник уже укладывается в лимиты и это JPEG — возвращается как есть.
func (p *Processor) Process(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	origBounds := img.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth == 0 || origHeight == 0 {
		return nil, fmt.Errorf("invalid image size: %dx%d", origWidth, origHeight)
	}
	if format == "jpeg" && origWidth <= p.maxWidth && len(data) <= p.maxSizeByte {
		return data, nil
	}

	quality := min(max(p.quality, 1), 100)
	resizedWidth := min(origWidth, p.maxWidth)
	resizedHeight := max(1, origHeight*resizedWidth/origWidth)

	for {
		encoded, err := encodeJPEG(resizeNearest(img, resizedWidth, resizedHeight), quality)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= p.maxSizeByte {
			return encoded, nil
		}
		if resizedWidth <= minWidth {
			return nil, fmt.Errorf("image exceeds max size %d bytes even after downscale", p.maxSizeByte)
		}
		resizedWidth = max(1, int(float64(resizedWidth)*0.9))
		resizedHeight = max(1, origHeight*resizedWidth/origWidth)
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if srcWidth == 0 || srcHeight == 0 {
		return dst
	}

	for y := range height {
		srcY := srcBounds.Min.Y + y*srcHeight/height
		for x := range width {
			srcX := srcBounds.Min.X + x*srcWidth/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
