package convert

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"trailbloom/internal/utils"
)

// LoadImageFile decodes a .tex texture or any registered image format
// (png, jpeg, webp, bmp).
func LoadImageFile(path string) (image.Image, error) {
	path = utils.ResolveAssetPath(path)
	if strings.EqualFold(filepath.Ext(path), ".tex") {
		return DecodeTexFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	utils.Debug("Loaded %s image %s (%dx%d)", format, path, b.Dx(), b.Dy())
	return img, nil
}

// SavePNG writes img to path, removing the partial file on failure.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
