// Command phmctl is the Hockey League Manager operations CLI.
//
// Usage:
//
//	phmctl seed league.yaml
//	phmctl catalog --format yaml
//	phmctl sign-upload --file logo.png --type image/png
//	phmctl prefs prune --older-than 4320h
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/config"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/graph/neostore"
	"github.com/vladpavlovski/phm-sub006/internal/maintenance"
	"github.com/vladpavlovski/phm-sub006/internal/prefs"
	"github.com/vladpavlovski/phm-sub006/internal/seed"
	"github.com/vladpavlovski/phm-sub006/internal/upload"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "phmctl",
		Short:        "Hockey League Manager operations CLI",
		SilenceUsage: true,
	}
	root.AddCommand(seedCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(signUploadCmd())
	root.AddCommand(prefsCmd())
	return root
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	var failOnError bool
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Upsert nodes and edges from a YAML seed file into Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}
			return runGraph(func(ctx context.Context, cfg *config.Config, store graph.Store, cat *catalog.Catalog) error {
				start := time.Now()
				result := seed.Apply(ctx, store, cat, f, logger)
				logger.Info("Seed finished", "file", args[0], "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("seed error", "error", e)
				}
				if failOnError && len(result.Errors) > 0 {
					return fmt.Errorf("%d seed errors", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&failOnError, "strict", false, "Exit non-zero when any item fails")
	return cmd
}

// --------------------------------------------------------------------------
// catalog command
// --------------------------------------------------------------------------

func catalogCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the entity and relation catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCatalog(cmd.OutOrStdout(), catalog.Hockey(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json, yaml)")
	return cmd
}

func writeCatalog(w io.Writer, cat *catalog.Catalog, format string) error {
	entities := cat.Entities()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entities)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entities); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (json, yaml)", format)
	}
}

// --------------------------------------------------------------------------
// sign-upload command
// --------------------------------------------------------------------------

func signUploadCmd() *cobra.Command {
	var fileName, fileType string
	cmd := &cobra.Command{
		Use:   "sign-upload",
		Short: "Print a pre-signed S3 PUT URL for a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileName == "" || fileType == "" {
				return fmt.Errorf("--file and --type are required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := cmd.Context()
			signer, err := upload.NewS3Signer(ctx, upload.S3Options{
				AccessKeyID:     cfg.AWSAccessKeyID,
				SecretAccessKey: cfg.AWSSecretAccessKey,
				Region:          cfg.AWSRegion,
				Bucket:          cfg.S3Bucket,
				Expiry:          cfg.UploadURLExpiry,
			})
			if err != nil {
				return err
			}
			signed, err := signer.SignPut(ctx, fileName, fileType)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(upload.Response{
				SignedRequest: signed,
				URL:           upload.ObjectURL(signer.Bucket(), fileName),
			})
		},
	}
	cmd.Flags().StringVar(&fileName, "file", "", "Object key (file name)")
	cmd.Flags().StringVar(&fileType, "type", "", "Content type, e.g. image/png")
	return cmd
}

// --------------------------------------------------------------------------
// prefs command
// --------------------------------------------------------------------------

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage stored client preferences",
	}
	cmd.AddCommand(prefsPruneCmd())
	return cmd
}

func prefsPruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete preferences not written within the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			retention := cfg.PrefsRetention
			if olderThan > 0 {
				retention = olderThan
			}
			store, err := prefs.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n := maintenance.PrunePrefs(ctx, store, retention, time.Now(), logger)
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d preferences older than %s\n", n, retention)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Retention override (default PREFS_RETENTION_DAYS)")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runGraph handles config loading, the Neo4j connection, and context
// cancellation.
func runGraph(fn func(ctx context.Context, cfg *config.Config, store graph.Store, cat *catalog.Catalog) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.MemoryStore {
		return fmt.Errorf("seeding needs NEO4J_URI; MEMORY_STORE only lives inside the API process")
	}

	exec, err := neostore.NewExecutor(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		return err
	}
	defer exec.Close(context.Background())
	if err := exec.Verify(ctx); err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}

	cat := catalog.Hockey()
	return fn(ctx, cfg, neostore.New(exec, cat), cat)
}
