package cmd

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hydroviz/twsmap/internal/gradient"
	"github.com/hydroviz/twsmap/internal/grid"
	"github.com/hydroviz/twsmap/internal/legend"
	"github.com/hydroviz/twsmap/internal/mbtiles"
	"github.com/hydroviz/twsmap/internal/server"
	"github.com/hydroviz/twsmap/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve baked tiles, legend, graphs and the viewer page",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("tiles-dir", "", "Directory containing baked tiles (defaults to --output-dir)")
	serveCmd.Flags().String("mbtiles", "", "Serve tiles from an MBTiles database instead of a directory")
	serveCmd.Flags().String("graphs-dir", "./graphs", "Directory containing per-cell time-series graph images")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served tiles and graphs")
	serveCmd.Flags().Int("legend-steps", 10, "Number of legend intervals (must be even)")
	serveCmd.Flags().String("legend-unit", "cm", "Unit suffix for legend labels")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.tiles_dir", "tiles-dir")
	mustBind("serve.mbtiles", "mbtiles")
	mustBind("serve.graphs_dir", "graphs-dir")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.legend_steps", "legend-steps")
	mustBind("serve.legend_unit", "legend-unit")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	tilesDir := viper.GetString("serve.tiles_dir")
	if tilesDir == "" {
		tilesDir = viper.GetString("output-dir")
	}
	mbtilesPath := viper.GetString("serve.mbtiles")
	graphsDir := viper.GetString("serve.graphs_dir")
	cacheControl := viper.GetString("serve.cache_control")

	grad, err := loadGradient()
	if err != nil {
		return err
	}
	entries, err := legend.Build(grad, viper.GetInt("serve.legend_steps"), viper.GetString("serve.legend_unit"))
	if err != nil {
		return err
	}

	tilesCfg := server.TilesConfig{CacheControl: cacheControl}
	if mbtilesPath != "" {
		reader, err := mbtiles.Open(mbtilesPath)
		if err != nil {
			return err
		}
		defer reader.Close()
		tilesCfg.Source = reader
	} else {
		tilesCfg.TilesDir = tilesDir
	}

	tiles, err := server.NewTilesHandler(tilesCfg, logger)
	if err != nil {
		return err
	}
	graphs := server.NewGraphsHandler(server.GraphsConfig{
		GraphsDir:    graphsDir,
		GraphBase:    "/graphs",
		CacheControl: cacheControl,
	}, logger)
	legendHandler := server.NewLegendHandler(entries, logger)

	viewerFS, err := fs.Sub(web.ViewerFS, "viewer")
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/viewer/", http.StatusFound)
	})

	mux.Handle("/viewer/", http.StripPrefix("/viewer/", http.FileServer(http.FS(viewerFS))))
	mux.Handle("/tiles/", withCORS(tiles.Handler()))
	mux.Handle("/graphs/", withCORS(graphs.ImageHandler()))
	mux.Handle("/api/graph", withCORS(graphs.ProbeHandler()))
	mux.Handle("/legend", withCORS(legendHandler.JSONHandler()))
	mux.Handle("/legend.txt", withCORS(legendHandler.TableHandler()))

	logger.Info("viewer listening",
		"addr", addr,
		"tiles_dir", tilesDir,
		"mbtiles", mbtilesPath,
		"graphs_dir", graphsDir,
		"max_magnitude", grad.MaxMagnitude,
	)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

// loadGradient builds the diverging scale from --max-magnitude, falling back
// to the dataset's own extent when the flag is unset.
func loadGradient() (gradient.Diverging, error) {
	maxMag := viper.GetFloat64("max-magnitude")
	if maxMag <= 0 {
		data, err := grid.Load(viper.GetString("dataset"))
		if err != nil {
			return gradient.Diverging{}, fmt.Errorf("--max-magnitude unset and dataset unavailable: %w", err)
		}
		maxMag = data.MaxMagnitude()
	}
	return gradient.Diverging{MaxMagnitude: maxMag}, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
