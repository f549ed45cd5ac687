package media

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
	"github.com/CopeeeTang/rednote-mind-mcp/pkg/log"
)

// shrink resizes the image to fit within opts.MaxDimension and
// re-encodes it as JPEG at opts.Quality. Formats that cannot be decoded
// (or that would lose information, like animated GIFs) pass through
// untouched: a skipped transform beats a failed acquisition.
func shrink(img domain.Image, opts domain.MediaOptions) domain.Image {
	if strings.HasPrefix(img.MimeType, "image/gif") {
		return img
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		log.GlobalDebug("media transform skipped: undecodable", "url", img.SourceURL, "mime", img.MimeType)
		return img
	}

	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	img.Width, img.Height = w, h

	outW, outH := fitWithin(w, h, opts.MaxDimension)
	scaled := decoded
	if outW != w || outH != h {
		dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), decoded, bounds, draw.Over, nil)
		scaled = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: opts.Quality}); err != nil {
		log.GlobalWarn("media transform skipped: encode failed", "url", img.SourceURL, "error", err)
		return img
	}

	img.OriginalSize = len(img.Bytes)
	img.Bytes = buf.Bytes()
	img.Size = buf.Len()
	img.MimeType = "image/jpeg"
	img.Width, img.Height = outW, outH
	if img.OriginalSize > 0 {
		img.CompressionRatio = 1 - float64(img.Size)/float64(img.OriginalSize)
	}
	return img
}

// fitWithin scales (w, h) to fit inside a square of side max, keeping
// aspect ratio. Images already inside the bound keep their size.
func fitWithin(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}

	if w >= h {
		return max, h * max / w
	}
	return w * max / h, max
}
