// Package baker renders the pre-baked TWS-change overlay tiles. Each tile
// pixel is projected back to its 1°×1° grid cell and colored through the
// diverging gradient; cells without data stay transparent so the overlay
// composites over any base map.
package baker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"

	"github.com/hydroviz/twsmap/internal/gradient"
	"github.com/hydroviz/twsmap/internal/grid"
	"github.com/hydroviz/twsmap/internal/tile"
)

// DefaultOpacity is the alpha applied to data pixels so the overlay does not
// fully hide the base map.
const DefaultOpacity = 178

// Options configures tile rendering.
type Options struct {
	// TileSize is the output tile edge in pixels. Defaults to 256.
	TileSize int
	// Opacity is the alpha of data pixels. Defaults to DefaultOpacity.
	Opacity uint8
	// Supersample renders at 2x and downscales, anti-aliasing cell edges.
	Supersample bool
	// SmoothSigma applies a gaussian blur with the given sigma after
	// rendering. Zero disables smoothing.
	SmoothSigma float32
	// Compression selects the PNG compression level: "default", "speed",
	// "best" or "none".
	Compression string
}

// Baker renders tiles from a gridded dataset.
type Baker struct {
	data    *grid.Dataset
	grad    gradient.Diverging
	sink    Sink
	opts    Options
	filters *gift.GIFT
	encoder png.Encoder
	logger  *slog.Logger
}

// New creates a Baker writing rendered tiles to sink.
func New(data *grid.Dataset, grad gradient.Diverging, sink Sink, opts Options, logger *slog.Logger) (*Baker, error) {
	if data == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if opts.TileSize <= 0 {
		opts.TileSize = 256
	}
	if opts.Opacity == 0 {
		opts.Opacity = DefaultOpacity
	}

	level, err := parseCompression(opts.Compression)
	if err != nil {
		return nil, err
	}

	b := &Baker{
		data:    data,
		grad:    grad,
		sink:    sink,
		opts:    opts,
		encoder: png.Encoder{CompressionLevel: level},
		logger:  logger,
	}
	if opts.SmoothSigma > 0 {
		b.filters = gift.New(gift.GaussianBlur(opts.SmoothSigma))
	}
	return b, nil
}

// Render bakes a single tile and writes it to the sink. It returns the
// sink-specific path of the written tile.
func (b *Baker) Render(ctx context.Context, coords tile.Coords) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !coords.Valid() {
		return "", fmt.Errorf("tile %s: row outside zoom level", coords.String())
	}

	img := b.rasterize(coords)

	if b.opts.Supersample {
		small := image.NewNRGBA(image.Rect(0, 0, b.opts.TileSize, b.opts.TileSize))
		xdraw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = small
	}

	if b.filters != nil {
		blurred := image.NewNRGBA(b.filters.Bounds(img.Bounds()))
		b.filters.Draw(blurred, img)
		img = blurred
	}

	var buf bytes.Buffer
	if err := b.encoder.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("tile %s: encode failed: %w", coords.String(), err)
	}

	path, err := b.sink.WriteTile(coords, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("tile %s: write failed: %w", coords.String(), err)
	}

	b.log().Debug("tile baked", "coords", coords.String(), "path", path, "bytes", buf.Len())
	return path, nil
}

// rasterize fills the tile raster from the dataset, at 2x when
// supersampling.
func (b *Baker) rasterize(coords tile.Coords) *image.NRGBA {
	size := b.opts.TileSize
	if b.opts.Supersample {
		size *= 2
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			lat, lng := coords.PixelLatLng(px, py, size)
			value, ok := b.data.Value(grid.Point{Lat: lat, Lng: lng})
			if !ok {
				continue
			}
			img.SetNRGBA(px, py, b.grad.At(value).NRGBA(b.opts.Opacity))
		}
	}
	return img
}

func (b *Baker) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}

func parseCompression(name string) (png.CompressionLevel, error) {
	switch name {
	case "", "default":
		return png.DefaultCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	case "none":
		return png.NoCompression, nil
	default:
		return 0, fmt.Errorf("invalid png compression %q: must be default, speed, best or none", name)
	}
}
