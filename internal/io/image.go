package ioutils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// jpegQuality is used for every re-encoded cover.
const jpegQuality = 90

// ImageService prepares embedded cover art for album folders.
//
//	svc := NewImageService()
//	cover, err := svc.FolderArt(picture, 1000)
//	err = WriteFile("library/Bob Marley/Legend/cover.jpg", cover)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// FolderArt decodes data and returns it as a JPEG no larger than maxSize on
// either side. A maxSize of zero or less keeps the original dimensions.
func (s *ImageService) FolderArt(data []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		return s.ConvertToJPEG(data)
	}
	return s.ResizeImage(data, maxSize, maxSize)
}

// ResizeImage scales an image down to fit within maxWidth x maxHeight,
// keeping its aspect ratio, and encodes it as JPEG. Smaller images are only
// re-encoded.
//
//	// 1500x1000 -> 1000x666, 800x600 stays 800x600
//	resized, err := svc.ResizeImage(data, 1000, 1000)
func (s *ImageService) ResizeImage(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		return encodeJPEG(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return encodeJPEG(dst)
}

// ConvertToJPEG re-encodes any decodable image as JPEG.
func (s *ImageService) ConvertToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encodeJPEG(img)
}

// fit returns the largest dimensions within maxWidth x maxHeight that keep
// the aspect ratio of width x height.
func fit(width, height, maxWidth, maxHeight int) (int, int) {
	if (width <= maxWidth && height <= maxHeight) || width == 0 || height == 0 {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
