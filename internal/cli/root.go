// Package cli implements the clipstack CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcliao/clipstack/internal/blob"
	"github.com/rcliao/clipstack/internal/config"
	"github.com/rcliao/clipstack/internal/history"
	"github.com/rcliao/clipstack/internal/model"
	"github.com/rcliao/clipstack/internal/preview"
	"github.com/rcliao/clipstack/internal/store"
)

var cfg config.Config

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "clipstack",
	Short: "Clipboard history for menu launchers",
	Long: "A small clipboard history. Pipe copied content into `clipstack store`, " +
		"pick a line from `clipstack list` in wofi, rofi or dmenu and pipe it back to `clipstack decode`.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(cmd)

		v := viper.New()
		config.SetDefaults(v)
		flags := cmd.Flags()
		binds := map[string]string{
			config.KeyDBDir:          "db-path",
			config.KeyMaxDedupeDepth: "max-dedupe-depth",
			config.KeyMaxItems:       "max-items",
			config.KeyPreviewWidth:   "max-preview-width",
			config.KeyGenerateThumb:  "generate-thumb",
			config.KeyDedupeMode:     "dedupe-mode",
		}
		for key, name := range binds {
			if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
				return err
			}
		}

		path, _ := flags.GetString("config")
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(v, path)
		if err != nil {
			return err
		}
		slog.Debug("config loaded", "path", path, "db", cfg.DBDir, "max_items", cfg.MaxItems)
		return nil
	},
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file (default: $XDG_CONFIG_HOME/clipstack/config.toml)")
	pf.StringP("db-path", "d", "", "History directory (default: $XDG_DATA_HOME/clipstack)")
	pf.IntP("max-dedupe-depth", "m", 0, "How many recent entries are checked for duplicates")
	pf.IntP("max-items", "i", 0, "Maximum number of entries kept")
	pf.IntP("max-preview-width", "p", 0, "Maximum preview width in characters")
	pf.StringP("generate-thumb", "g", "", "Thumbnail output mode: none, wofi or rofi")
	pf.String("dedupe-mode", "", "On duplicate content: touch keeps the old entry, reinsert replaces it")
	pf.CountP("verbose", "v", "Increase log verbosity")
	pf.BoolP("quiet", "q", false, "Suppress all logs")
}

func setupLogger(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetCount("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	level := log.ErrorLevel - log.Level(verbose*4)
	if quiet {
		level = math.MaxInt32
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		TimeFormat: time.RFC822,
		Level:      level,
		Prefix:     config.AppName,
	})
	slog.SetDefault(slog.New(logger))
}

// session is one load, mutate, flush cycle over the history directory.
type session struct {
	store    *store.SQLiteStore
	blobs    *blob.Store
	hist     *history.History
	renderer preview.Renderer
}

func openSession(ctx context.Context) (*session, error) {
	s, err := store.NewSQLiteStore(filepath.Join(cfg.DBDir, store.FileName))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	snap, err := s.Load(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}
	slog.Debug("history opened", "path", s.Path(), "entries", len(snap.Order))

	blobs := blob.NewStore(cfg.DBDir)
	h := history.New(snap, history.Options{
		MaxItems:       cfg.MaxItems,
		MaxDedupeDepth: cfg.MaxDedupeDepth,
		DedupeMode:     cfg.DedupeMode,
	}, blobs, preview.NewGenerator(cfg.DBDir))

	return &session{
		store:    s,
		blobs:    blobs,
		hist:     h,
		renderer: preview.NewRenderer(cfg.DBDir, cfg.GenerateThumb, cfg.PreviewWidth),
	}, nil
}

func (s *session) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.hist.Snapshot()); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// parseID reads an entry id from a positional argument or, failing that, from
// the first field of a picked menu line such as "12\tpreview".
func parseID(args []string, stdin func() ([]byte, error)) (uint64, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		b, err := stdin()
		if err != nil {
			return 0, fmt.Errorf("read stdin: %w: %w", model.ErrIO, err)
		}
		raw = string(b)
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no id given: %w", model.ErrInvalidIndex)
	}
	// plain decimal without leading zeros, so "010" is neither 8 nor 10
	raw = fields[0]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || (len(raw) > 1 && raw[0] == '0') {
		return 0, fmt.Errorf("%q: %w", fields[0], model.ErrInvalidIndex)
	}
	return id, nil
}
