// Package preview classifies clipboard content, builds the short summaries
// shown in menus and writes image thumbnails.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rcliao/clipstack/internal/model"
)

const (
	// ThumbDirName is the subdirectory thumbnails are written to.
	ThumbDirName = "thumbs"
	// ThumbSize bounds both thumbnail dimensions.
	ThumbSize = 256
)

// Generator builds previews for new entries.
type Generator struct {
	thumbDir string
}

// NewGenerator returns a Generator that writes thumbnails under dir/thumbs.
func NewGenerator(dir string) *Generator {
	return &Generator{thumbDir: filepath.Join(dir, ThumbDirName)}
}

// ThumbPath returns the full path of a thumbnail name.
func (g *Generator) ThumbPath(name string) string {
	return filepath.Join(g.thumbDir, name)
}

// Generate classifies b and returns its preview. Images also get a thumbnail
// named after id.
func (g *Generator) Generate(id uint64, b []byte) (model.Preview, error) {
	kind, err := filetype.Match(b)
	if err != nil || kind == filetype.Unknown {
		return model.TextPreview(TextSummary(b), ""), nil
	}

	summary := BinarySummary(kind.MIME.Value, len(b))
	if kind.MIME.Type != "image" {
		return model.TextPreview(summary, kind.MIME.Value), nil
	}

	name, err := g.writeThumbnail(id, kind.Extension, b)
	if err != nil {
		if errors.Is(err, model.ErrIO) {
			return model.Preview{}, err
		}
		slog.Warn("thumbnail skipped", "id", id, "mime", kind.MIME.Value, "error", err)
		return model.TextPreview(summary, kind.MIME.Value), nil
	}
	return model.ThumbPreview(summary, kind.MIME.Value, name), nil
}

// Remove deletes the thumbnail a preview owns. Text previews own nothing.
func (g *Generator) Remove(p model.Preview) error {
	if !p.HasThumbnail() {
		return nil
	}
	if err := os.Remove(g.ThumbPath(p.Thumbnail)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete thumbnail %s: %w", p.Thumbnail, model.ErrNotFound)
		}
		return fmt.Errorf("delete thumbnail %s: %w: %w", p.Thumbnail, model.ErrIO, err)
	}
	slog.Debug("thumbnail deleted", "name", p.Thumbnail)
	return nil
}

// writeThumbnail decodes b, downscales it and saves it as <id>.<ext>. Decode
// and encode problems come back unwrapped; file system problems wrap ErrIO.
func (g *Generator) writeThumbnail(id uint64, ext string, b []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	thumb := resize.Thumbnail(ThumbSize, ThumbSize, img, resize.Lanczos3)

	encode, ext := encoderFor(ext)
	var buf bytes.Buffer
	if err := encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	if err := os.MkdirAll(g.thumbDir, 0o700); err != nil {
		return "", fmt.Errorf("create thumbs dir: %w: %w", model.ErrIO, err)
	}
	name := strconv.FormatUint(id, 10) + "." + ext
	if err := os.WriteFile(g.ThumbPath(name), buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("write thumbnail %s: %w: %w", name, model.ErrIO, err)
	}
	slog.Debug("thumbnail written", "name", name, "width", thumb.Bounds().Dx(), "height", thumb.Bounds().Dy())
	return name, nil
}

type encodeFunc func(io.Writer, image.Image) error

// encoderFor picks the encoder matching the sniffed extension. Formats Go
// can only decode are written as png.
func encoderFor(ext string) (encodeFunc, string) {
	switch ext {
	case "png":
		return png.Encode, ext
	case "jpg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
		}, ext
	case "gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, ext
	case "bmp":
		return bmp.Encode, ext
	case "tif":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, nil)
		}, ext
	default:
		return png.Encode, "png"
	}
}
