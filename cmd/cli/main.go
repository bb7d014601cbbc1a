package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/app"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
)

const watchDebounce = 300 * time.Millisecond

var (
	cfg    *config.Config
	logger logging.Logger
)

var rootCmd = &cobra.Command{
	Use:           "wireframe",
	Short:         "Export and seed wireframe builder content",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		provider, err := logging.NewProvider(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			return err
		}
		logger = logging.Module(provider, logging.CLIModule)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(newExportCmd(), newImportCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dumper is implemented by stores that can list every object regardless of type.
type dumper interface {
	Dump(ctx context.Context, objectType string) ([]domain.Object, error)
}

func newExportCmd() *cobra.Command {
	var objectType string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print stored objects as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := app.OpenStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			var objects []domain.Object
			if d, ok := store.(dumper); ok {
				objects, err = d.Dump(ctx, objectType)
				if err != nil {
					return errors.Wrap(err, "Export failed")
				}
			} else {
				types := []string{domain.TypePage, domain.TypeSection, domain.TypeContentBlock, domain.TypeTemplate}
				if objectType != "" {
					types = []string{objectType}
				}
				for _, t := range types {
					found, err := store.Find(ctx, domain.Query{Type: t, Props: domain.DefaultProps})
					if err != nil && !domain.IsNotFound(err) {
						return errors.Wrapf(err, "Export of %s failed", t)
					}
					objects = append(objects, found...)
				}
			}
			if objects == nil {
				objects = []domain.Object{}
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(objects)
		},
	}
	cmd.Flags().StringVar(&objectType, "type", "", "only export objects of this type (site-pages, page-sections, content-blocks, page-templates)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		file  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert objects from a JSON or markdown seed file into the sqlite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
			if err != nil {
				return errors.Wrapf(err, "Cannot open database %q", cfg.DatabaseURL)
			}
			defer repo.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := importFile(ctx, repo, file); err != nil {
				if !watch {
					return err
				}
				logger.Error("import failed", "file", file, "error", err)
			}
			if !watch {
				return nil
			}
			return watchFile(ctx, repo, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed file (.json or .md)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-import whenever the file changes")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type upserter interface {
	Upsert(ctx context.Context, obj *domain.Object) error
}

func importFile(ctx context.Context, repo upserter, path string) (int, error) {
	objects, err := readSeed(path)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range objects {
		if err := repo.Upsert(ctx, &objects[i]); err != nil {
			logger.Warn("skipping object", "slug", objects[i].Slug, "type", objects[i].Type, "error", err)
			continue
		}
		count++
	}
	logger.Info("import finished", "file", path, "imported", count, "total", len(objects))
	return count, nil
}

// watchFile re-imports path after each burst of changes until ctx is done.
// The parent directory is watched so editors that save by rename are seen.
func watchFile(ctx context.Context, repo upserter, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "Cannot create file watcher")
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "Cannot watch %s", filepath.Dir(target))
	}
	logger.Info("watching for changes", "file", target)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(watchDebounce)
			}
		case <-pending:
			pending = nil
			if _, err := importFile(ctx, repo, target); err != nil {
				logger.Error("import failed", "file", target, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
