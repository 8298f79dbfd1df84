package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nikora-inc/promo-engine/pkg/config"
	"github.com/nikora-inc/promo-engine/pkg/export"
	"github.com/nikora-inc/promo-engine/pkg/handlers"
	"github.com/nikora-inc/promo-engine/pkg/metrics"
	"github.com/nikora-inc/promo-engine/pkg/middleware"
	"github.com/nikora-inc/promo-engine/pkg/models"
	"github.com/nikora-inc/promo-engine/pkg/services"
	"github.com/nikora-inc/promo-engine/pkg/tabular"
	"github.com/nikora-inc/promo-engine/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	verbose bool
	logger  *zap.Logger

	// split flags
	orderPath    string
	schedulePath string
	mappingPath  string
	outDir       string
	writeZip     bool
)

var rootCmd = &cobra.Command{
	Use:   "promo-engine",
	Short: "Promo order barcode fix and weekday split",
	Long: `promo-engine rewrites order barcodes through a static old-to-new map,
then partitions the rows into weekday files using the shop schedule.
Incoming order files are non-changeable; we adapt on our side.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload UI and API server",
	RunE:  runServe,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Process an order file headlessly and write the weekday workbooks",
	RunE:  runSplit,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	splitCmd.Flags().StringVar(&orderPath, "order", "", "order file (.xlsx/.csv), required")
	splitCmd.Flags().StringVar(&schedulePath, "schedule", "", "shop schedule file (default: local shop_schedule.xlsx)")
	splitCmd.Flags().StringVar(&mappingPath, "mapping", "", "barcode map file (default: local barcode_map.xlsx)")
	splitCmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	splitCmd.Flags().BoolVar(&writeZip, "zip", false, "also write the combined zip archive")
	_ = splitCmd.MarkFlagRequired("order")

	rootCmd.AddCommand(serveCmd, splitCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}

	defaults, err := loadDefaults(cfg)
	if err != nil {
		return err
	}
	if defaults.Schedule == nil {
		logger.Warn("no local shop_schedule.xlsx found; requests must upload an override")
	}
	if defaults.Mapping == nil {
		logger.Warn("no local barcode_map.xlsx found; requests must upload an override")
	}

	reg := metrics.NewRegistry()
	pipeline := services.NewPipeline(logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSplitHandler(cfg, pipeline, defaults, reg, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", reg.Handler())
	mux.Handle("/", http.FileServer(http.FS(ui.StaticFS())))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting promo-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
	)
	return http.ListenAndServe(addr, handler)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}

	order, err := tabular.ReadTableFile(orderPath)
	if err != nil {
		return fmt.Errorf("order file: %w", err)
	}
	schedule, err := resolveTable(schedulePath, cfg.ShopScheduleCandidates())
	if err != nil {
		return fmt.Errorf("shop schedule: %w", err)
	}
	mapping, err := resolveTable(mappingPath, cfg.BarcodeMapCandidates())
	if err != nil {
		return fmt.Errorf("barcode map: %w", err)
	}

	result, err := services.NewPipeline(logger).Run(order, schedule, mapping, cfg.PipelineConfig())
	if err != nil {
		return err
	}

	date := time.Now()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, bucket := range models.BucketNames() {
		ds := result.Buckets[bucket]
		if bucket == models.BucketUnassigned && ds.Len() == 0 {
			continue
		}
		path := filepath.Join(outDir, export.FileName(bucket, date))
		if err := writeWorkbook(export.Shape(ds, cfg.Export.DropColumns), path); err != nil {
			return err
		}
		fmt.Printf("%-10s %5d rows  %s\n", bucket, ds.Len(), path)
	}
	if writeZip {
		path := filepath.Join(outDir, export.ZipName(date))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteZip(result.Buckets, cfg.Export.DropColumns, date, f); err != nil {
			return err
		}
		fmt.Printf("archive    %s\n", path)
	}
	fmt.Printf("total %d rows, %d barcodes rewritten (run %s)\n",
		result.Summary.TotalRows, result.Summary.RewrittenBarcodes, result.Summary.RunID)
	return nil
}

func writeWorkbook(ds *models.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tabular.WriteXLSX(ds, f)
}

// loadDefaults loads the local schedule and mapping tables if present.
func loadDefaults(cfg *config.Config) (handlers.Defaults, error) {
	schedule, err := tabular.TryLoadFirst(cfg.ShopScheduleCandidates(), logger)
	if err != nil {
		return handlers.Defaults{}, fmt.Errorf("shop schedule: %w", err)
	}
	mapping, err := tabular.TryLoadFirst(cfg.BarcodeMapCandidates(), logger)
	if err != nil {
		return handlers.Defaults{}, fmt.Errorf("barcode map: %w", err)
	}
	return handlers.Defaults{Schedule: schedule, Mapping: mapping}, nil
}

// resolveTable reads the explicit path when given, otherwise the first
// existing candidate.
func resolveTable(path string, candidates []string) (*models.Dataset, error) {
	if path != "" {
		return tabular.ReadTableFile(path)
	}
	ds, err := tabular.TryLoadFirst(candidates, logger)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("no file found (tried %v)", candidates)
	}
	return ds, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
