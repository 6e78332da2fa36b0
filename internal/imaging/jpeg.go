package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // generated images arrive as PNG
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// ErrImageProcessing is returned when a generated image cannot be decoded,
// converted or written.
var ErrImageProcessing = errors.New("image processing failed")

const DefaultQuality = 85

// Options control the JPEG conversion.
type Options struct {
	// Size is the edge length of the square output. Zero keeps the source dimensions.
	Size int
	// Quality is the JPEG quality in [1, 100]. Zero means DefaultQuality.
	Quality int
}

// ConvertToJPEG decodes the image at src, flattens any transparency onto a
// white background, scales it to Options.Size and writes a JPEG to dst.
// dst is only visible once completely written.
func ConvertToJPEG(src, dst string, opts Options) (string, error) {
	slog.Info("Converting image to JPEG", slog.String("src", src), slog.String("dst", dst))

	quality := opts.Quality
	if quality == 0 {
		quality = DefaultQuality
	}
	if quality < 1 || quality > 100 {
		return "", fmt.Errorf("%w: quality %d out of range", ErrImageProcessing, quality)
	}
	if opts.Size < 0 {
		return "", fmt.Errorf("%w: negative size %d", ErrImageProcessing, opts.Size)
	}

	img, err := decode(src)
	if err != nil {
		slog.Error("Failed to decode image", slog.String("src", src), slog.Any("err", err))
		return "", err
	}

	out := flatten(img, opts.Size)

	if err := writeJPEG(dst, out, quality); err != nil {
		slog.Error("Failed to write JPEG", slog.String("dst", dst), slog.Any("err", err))
		return "", err
	}

	slog.Info("Image converted", slog.String("dst", dst), slog.Int("width", out.Bounds().Dx()), slog.Int("height", out.Bounds().Dy()))
	return dst, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open source: %w", ErrImageProcessing, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode source: %w", ErrImageProcessing, err)
	}
	return img, nil
}

// flatten draws img over an opaque white canvas, scaling it to size x size
// when size is positive.
func flatten(img image.Image, size int) *image.RGBA {
	bounds := img.Bounds()
	target := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	if size > 0 {
		target = image.Rect(0, 0, size, size)
	}

	canvas := image.NewRGBA(target)
	draw.Draw(canvas, target, image.NewUniform(color.White), image.Point{}, draw.Src)

	if target.Dx() == bounds.Dx() && target.Dy() == bounds.Dy() {
		draw.Draw(canvas, target, img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, target, img, bounds, draw.Over, nil)
	}
	return canvas
}

func writeJPEG(path string, img image.Image, quality int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrImageProcessing, err)
	}

	tmp, err := os.CreateTemp(dir, ".jpeg-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrImageProcessing, err)
	}
	tmpName := tmp.Name()

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality}); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: encode: %w", ErrImageProcessing, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close: %w", ErrImageProcessing, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %w", ErrImageProcessing, err)
	}
	return nil
}
