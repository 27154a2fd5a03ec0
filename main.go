package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dim-editor/api"
	"dim-editor/config"
	"dim-editor/dimension"
	"dim-editor/preset"
	"dim-editor/session"
	"dim-editor/store"
	"dim-editor/watch"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "dim-editor",
	Short:        "Edit CAD dimension exports through presets and direct values",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editing API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <dimension-file> [preset-file]",
	Short: "Parse the files and report problems without starting a server",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		presetPath := ""
		if len(args) == 2 {
			presetPath = args[1]
		}
		return check(args[0], presetPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dimPath := cfg.Files.DimensionFile
	if dimPath == "" {
		dimPath, err = store.DiscoverDimensionFile(cfg.Files.DataDir)
		if err != nil {
			logger.Warn("no default dimension file; sessions must name their own",
				zap.String("data_dir", cfg.Files.DataDir), zap.Error(err))
			dimPath = ""
		}
	}
	presetPath := cfg.Files.PresetFile
	if presetPath == "" && dimPath != "" {
		presetPath = store.PresetPathFor(dimPath)
	}
	if dimPath != "" {
		logger.Info("default files",
			zap.String("dimensions", dimPath), zap.String("presets", presetPath))
	}

	manager := session.NewManager()
	router := api.RegisterRoutes(manager, logger, api.Defaults{
		DimensionFile: dimPath,
		PresetFile:    presetPath,
	})

	if cfg.Watch.Enabled && dimPath != "" {
		debounce, err := cfg.DebounceDuration()
		if err != nil {
			return err
		}
		w, err := watch.New(dimPath, debounce, func() {
			logger.Info("dimension file changed on disk")
			manager.Broadcast(session.Event{Type: "reload", Name: "external"})
		}, logger)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	logger.Info("dim-editor listening", zap.String("addr", cfg.Server.Addr))
	return http.ListenAndServe(cfg.Server.Addr, router)
}

// check parses both files the way a session load would and prints what a
// shell would surface, without touching anything.
func check(dimPath, presetPath string) error {
	if presetPath == "" {
		presetPath = store.PresetPathFor(dimPath)
	}
	st := store.New(dimPath, presetPath)

	dimText, err := st.ReadDimensions()
	if err != nil {
		return err
	}
	dims, err := dimension.NewCodec().Parse(dimText)
	if err != nil {
		return fmt.Errorf("%s: %w", dimPath, err)
	}
	fmt.Printf("%s: %d dimensions\n", dimPath, dims.Len())

	presetText, err := st.ReadPresets()
	if err != nil {
		return err
	}
	coll, errs := preset.NewCodec().Parse(presetText)
	fmt.Printf("%s: %d presets\n", presetPath, coll.Len())
	for _, pe := range errs {
		fmt.Printf("  dropped: %v\n", pe)
	}
	for _, d := range coll.List() {
		if !dims.Has(d.TargetDimension) {
			fmt.Printf("  unresolved binding: preset %q -> %q\n", d.Name, d.TargetDimension)
		}
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
