// Package images is the upload pipeline: raw bytes in, a generated filename
// out after re-encoding to bounded dimensions. The rest of the system only
// ever stores the returned filename string.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"storefront/internal/domain"
)

// Category decides the target directory, output format and size bounds.
type Category struct {
	Dir    string // subdirectory under the media root
	Prefix string // filename prefix
	MaxW   int
	MaxH   int
	PNG    bool // encode PNG instead of JPEG
}

var (
	Product = Category{Dir: "products", Prefix: "prod", MaxW: 1200, MaxH: 1200}
	Logo    = Category{Dir: "logos", Prefix: "logo", MaxW: 1200, MaxH: 1200, PNG: true}
	Banner  = Category{Dir: "banners", Prefix: "banner", MaxW: 1920, MaxH: 1080, PNG: true}
)

type Pipeline struct {
	Root string // media root directory
}

func New(root string) *Pipeline { return &Pipeline{Root: root} }

// Save decodes, downscales to fit the category bounds (never enlarging),
// re-encodes and writes the file. baseID ties the filename to the owning
// resource; n distinguishes multiple uploads in one request.
func (p *Pipeline) Save(data []byte, cat Category, baseID string, n int) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", domain.InvalidInput("only image files are allowed")
	}

	dst := scaleToFit(src, cat.MaxW, cat.MaxH)

	ext := "jpeg"
	if cat.PNG {
		ext = "png"
	}
	filename := fmt.Sprintf("%s-%s-%d-%d.%s", cat.Prefix, baseID, time.Now().UnixMilli(), n, ext)

	dir := filepath.Join(p.Root, cat.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.Dependency("could not store image")
	}
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", domain.Dependency("could not store image")
	}
	defer f.Close()

	if cat.PNG {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(f, dst)
	} else {
		err = jpeg.Encode(f, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", domain.Dependency("could not store image")
	}
	return filepath.Join(cat.Dir, filename), nil
}

// scaleToFit shrinks to fit within maxW x maxH preserving aspect ratio;
// images already inside the bounds pass through untouched.
func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}
	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
