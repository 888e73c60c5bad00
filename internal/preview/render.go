package preview

import (
	"path/filepath"
	"strconv"

	"github.com/rcliao/clipstack/internal/model"
)

// Renderer turns stored previews into menu lines.
type Renderer struct {
	Mode     model.ThumbMode
	Width    int
	ThumbDir string
}

// NewRenderer returns a Renderer for thumbnails stored under dir/thumbs.
func NewRenderer(dir string, mode model.ThumbMode, width int) Renderer {
	return Renderer{
		Mode:     mode,
		Width:    width,
		ThumbDir: filepath.Join(dir, ThumbDirName),
	}
}

// Render formats one entry as "<id>\t<summary>", embedding the thumbnail
// path for the wofi and rofi modes.
func (r Renderer) Render(id uint64, p model.Preview) string {
	text := Truncate(p.Summary, r.Width)
	prefix := strconv.FormatUint(id, 10) + "\t"
	if !p.HasThumbnail() {
		return prefix + text
	}

	path := filepath.Join(r.ThumbDir, p.Thumbnail)
	switch r.Mode {
	case model.ThumbWofi:
		return prefix + ":img:" + path + ":text:" + text
	case model.ThumbRofi:
		return prefix + text + "\x00icon\x1fthumbnail://" + path
	default:
		return prefix + text
	}
}
