package cmd

import (
	"fmt"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hydroviz/twsmap/internal/baker"
	"github.com/hydroviz/twsmap/internal/gradient"
	"github.com/hydroviz/twsmap/internal/grid"
	"github.com/hydroviz/twsmap/internal/mbtiles"
	"github.com/hydroviz/twsmap/internal/tile"
	"github.com/hydroviz/twsmap/internal/worker"
)

// webMercatorWorld is the bounding box of the whole Web Mercator world.
var webMercatorWorld = [4]float64{-180, -85.0511, 180, 85.0511}

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Bake TWS-change overlay tiles",
	Long:  `Bake pre-rendered color tiles from the gridded TWS-change dataset for a zoom range.`,
	RunE:  runBake,
}

func init() {
	rootCmd.AddCommand(bakeCmd)

	bakeCmd.Flags().String("bbox", "", "Bounding box: minLon,minLat,maxLon,maxLat (default: whole world)")
	bakeCmd.Flags().Int("zoom-min", 0, "Minimum zoom level")
	bakeCmd.Flags().Int("zoom-max", 5, "Maximum zoom level")
	bakeCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Number of parallel workers")
	bakeCmd.Flags().Bool("progress", true, "Show progress bar")
	bakeCmd.Flags().Bool("allow-failures", false, "Continue even if some tiles fail")

	bakeCmd.Flags().Int("tile-size", 256, "Tile size in pixels")
	bakeCmd.Flags().Int("opacity", baker.DefaultOpacity, "Alpha of data pixels (0-255)")
	bakeCmd.Flags().Bool("supersample", false, "Render at 2x and downscale for smoother cell edges")
	bakeCmd.Flags().Float64("smooth-sigma", 0, "Gaussian blur sigma applied to baked tiles (0: off)")
	bakeCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")

	bakeCmd.Flags().String("format", "folder", "Output format: folder or mbtiles")
	bakeCmd.Flags().String("output-file", "", "Output file path for MBTiles format (e.g., tws.mbtiles)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"bake.bbox", "bbox"},
		{"bake.zoom_min", "zoom-min"},
		{"bake.zoom_max", "zoom-max"},
		{"bake.workers", "workers"},
		{"bake.progress", "progress"},
		{"bake.allow_failures", "allow-failures"},
		{"bake.tile_size", "tile-size"},
		{"bake.opacity", "opacity"},
		{"bake.supersample", "supersample"},
		{"bake.smooth_sigma", "smooth-sigma"},
		{"bake.png_compression", "png-compression"},
		{"bake.format", "format"},
		{"bake.output_file", "output-file"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, bakeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBake(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	zoomMin := viper.GetInt("bake.zoom_min")
	zoomMax := viper.GetInt("bake.zoom_max")
	format := viper.GetString("bake.format")
	outputFile := viper.GetString("bake.output_file")
	outputDir := viper.GetString("output-dir")

	if zoomMin < 0 || zoomMax < zoomMin {
		return fmt.Errorf("invalid zoom range %d..%d", zoomMin, zoomMax)
	}
	if format != "folder" && format != "mbtiles" {
		return fmt.Errorf("invalid format %q: must be 'folder' or 'mbtiles'", format)
	}
	if format == "mbtiles" && outputFile == "" {
		return fmt.Errorf("--output-file is required when using --format=mbtiles")
	}

	bbox := webMercatorWorld
	if s := viper.GetString("bake.bbox"); s != "" {
		var err error
		bbox, err = parseBBox(s)
		if err != nil {
			return err
		}
	}

	data, err := grid.Load(viper.GetString("dataset"))
	if err != nil {
		return err
	}

	maxMag := viper.GetFloat64("max-magnitude")
	if maxMag <= 0 {
		maxMag = data.MaxMagnitude()
	}
	grad := gradient.Diverging{MaxMagnitude: maxMag}

	tiles := tile.TilesInBBox(bbox, zoomMin, zoomMax)
	logger.Info("Starting tile bake",
		"cells", data.Len(),
		"max_magnitude", maxMag,
		"tiles", len(tiles),
		"zoom_min", zoomMin,
		"zoom_max", zoomMax,
		"format", format,
	)

	var sink baker.Sink
	switch format {
	case "folder":
		sink = baker.FolderSink{Dir: outputDir}
	case "mbtiles":
		w, err := mbtiles.Create(outputFile, mbtiles.Metadata{
			Name:        "TWS Change",
			Format:      "png",
			Type:        "overlay",
			Version:     "1.0",
			Description: "Total water storage change overlay",
			Bounds:      bbox,
			MinZoom:     zoomMin,
			MaxZoom:     zoomMax,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("Failed to close MBTiles writer", "error", err)
			}
		}()
		sink = baker.MBTilesSink{Writer: w}
	}

	b, err := baker.New(data, grad, sink, baker.Options{
		TileSize:    viper.GetInt("bake.tile_size"),
		Opacity:     uint8(viper.GetInt("bake.opacity")),
		Supersample: viper.GetBool("bake.supersample"),
		SmoothSigma: float32(viper.GetFloat64("bake.smooth_sigma")),
		Compression: viper.GetString("bake.png_compression"),
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progress := worker.NewProgress(len(tiles), viper.GetBool("bake.progress"))
	pool := worker.New(worker.Config{
		Workers:    viper.GetInt("bake.workers"),
		Renderer:   b,
		OnProgress: progress.Callback(),
	})

	tasks := make([]worker.Task, len(tiles))
	for i, c := range tiles {
		tasks[i] = worker.Task{Coords: c}
	}

	results := pool.Run(ctx, tasks)
	progress.Done()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error("Tile failed", "coords", res.Task.Coords.String(), "error", res.Err)
		}
	}

	logger.Info(progress.Summary())

	if failed > 0 && !viper.GetBool("bake.allow_failures") {
		return fmt.Errorf("%d of %d tiles failed", failed, len(tiles))
	}
	return nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) ([4]float64, error) {
	var bbox [4]float64

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return bbox, fmt.Errorf("invalid bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return bbox, fmt.Errorf("invalid bbox component %q: %w", part, err)
		}
		bbox[i] = v
	}
	if bbox[0] >= bbox[2] || bbox[1] >= bbox[3] {
		return bbox, fmt.Errorf("invalid bbox %q: min must be less than max", s)
	}
	return bbox, nil
}
