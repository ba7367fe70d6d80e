package baker

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydroviz/twsmap/internal/gradient"
	"github.com/hydroviz/twsmap/internal/grid"
	"github.com/hydroviz/twsmap/internal/tile"
)

// memSink collects rendered tiles in memory.
type memSink struct {
	mu    sync.Mutex
	tiles map[string][]byte
}

func newMemSink() *memSink {
	return &memSink{tiles: make(map[string][]byte)}
}

func (s *memSink) WriteTile(coords tile.Coords, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := coords.String()
	s.tiles[key] = data
	return key, nil
}

func testDataset(t *testing.T) *grid.Dataset {
	t.Helper()
	// Two cells: a strong loss near Madrid, a strong gain in the Bay of Bengal.
	d, err := grid.LoadFrom(strings.NewReader("-3.5,41.5,-20\n90.5,10.5,20\n"))
	require.NoError(t, err)
	return d
}

func TestBakerRender(t *testing.T) {
	data := testDataset(t)
	grad := gradient.Diverging{MaxMagnitude: data.MaxMagnitude()}
	sink := newMemSink()

	b, err := New(data, grad, sink, Options{}, nil)
	require.NoError(t, err)

	// Zoom 2, column 1, row 1 covers lng [-90, 0], lat [0, ~66.5]: the loss
	// cell is inside, the gain cell is not.
	coords := tile.NewCoords(2, 1, 1)
	path, err := b.Render(context.Background(), coords)
	require.NoError(t, err)
	require.Equal(t, coords.String(), path)

	img, err := png.Decode(bytes.NewReader(sink.tiles[path]))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())

	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok, "expected NRGBA tile")

	wantColor := grad.At(-20).NRGBA(DefaultOpacity)
	colored := 0
	for py := 0; py < 256; py++ {
		for px := 0; px < 256; px++ {
			c := nrgba.NRGBAAt(px, py)
			if c.A == 0 {
				continue
			}
			colored++
			require.Equal(t, wantColor, c, "pixel (%d,%d)", px, py)
		}
	}
	// A 1-degree cell on a 90-degree tile is just under 3 pixels wide.
	require.Greater(t, colored, 0, "expected the loss cell to be painted")
	require.Less(t, colored, 256*256/100, "data cell should cover a small fraction of the tile")
}

func TestBakerRenderEmptyTile(t *testing.T) {
	data := testDataset(t)
	sink := newMemSink()

	b, err := New(data, gradient.Diverging{MaxMagnitude: 20}, sink, Options{}, nil)
	require.NoError(t, err)

	// Column 0 covers lng [-180, -90]: no data there.
	path, err := b.Render(context.Background(), tile.NewCoords(2, 0, 1))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(sink.tiles[path]))
	require.NoError(t, err)

	nrgba := img.(*image.NRGBA)
	for py := 0; py < 256; py += 16 {
		for px := 0; px < 256; px += 16 {
			require.Equal(t, uint8(0), nrgba.NRGBAAt(px, py).A, "pixel (%d,%d) should be transparent", px, py)
		}
	}
}

func TestBakerRenderInvalidRow(t *testing.T) {
	b, err := New(testDataset(t), gradient.Diverging{MaxMagnitude: 20}, newMemSink(), Options{}, nil)
	require.NoError(t, err)

	_, err = b.Render(context.Background(), tile.NewCoords(2, 0, 4))
	require.Error(t, err)
}

func TestBakerRenderCancelled(t *testing.T) {
	b, err := New(testDataset(t), gradient.Diverging{MaxMagnitude: 20}, newMemSink(), Options{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Render(ctx, tile.NewCoords(2, 1, 1))
	require.ErrorIs(t, err, context.Canceled)
}

func TestBakerSupersampleAndSmooth(t *testing.T) {
	data := testDataset(t)
	grad := gradient.Diverging{MaxMagnitude: data.MaxMagnitude()}
	sink := newMemSink()

	b, err := New(data, grad, sink, Options{Supersample: true, SmoothSigma: 1.0}, nil)
	require.NoError(t, err)

	path, err := b.Render(context.Background(), tile.NewCoords(2, 1, 1))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(sink.tiles[path]))
	require.NoError(t, err)
	// Output stays at the base tile size regardless of supersampling.
	require.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())
}

func TestBakerInvalidCompression(t *testing.T) {
	_, err := New(testDataset(t), gradient.Diverging{MaxMagnitude: 20}, newMemSink(), Options{Compression: "zopfli"}, nil)
	require.Error(t, err)
}

func TestFolderSink(t *testing.T) {
	dir := t.TempDir()
	sink := FolderSink{Dir: dir}

	path, err := sink.WriteTile(tile.NewCoords(3, 5, 2), []byte("png"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "3", "5", "2.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
}

func TestFolderSinkWrapsColumn(t *testing.T) {
	dir := t.TempDir()
	sink := FolderSink{Dir: dir}

	path, err := sink.WriteTile(tile.NewCoords(3, -1, 2), []byte("png"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "3", "7", "2.png"), path)
}
