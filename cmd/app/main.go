package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/noteforge/internal"
	"github.com/starford/noteforge/internal/codec"
	"github.com/starford/noteforge/internal/mcpserver"
	"github.com/starford/noteforge/internal/noteservice"
	"github.com/starford/noteforge/internal/store"
	pkgconfig "github.com/starford/noteforge/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// No config file: run on defaults.
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func openStore(cmd *cli.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Path)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func exportNotes(_ context.Context, cmd *cli.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	notes, err := st.All()
	if err != nil {
		return err
	}
	out := cmd.String("out")
	count, err := codec.Export(out, notes)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d notes to %s\n", count, out)
	return nil
}

func importNotes(_ context.Context, cmd *cli.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := codec.ParseFile(cmd.String("file"))
	if err != nil {
		return err
	}
	stats, err := st.BulkImport(records, !cmd.Bool("no-merge"))
	if err != nil {
		return err
	}
	fmt.Printf("inserted %d, updated %d\n", stats.Inserted, stats.Updated)
	return nil
}

func reindex(_ context.Context, cmd *cli.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RebuildIndex(); err != nil {
		return err
	}
	fmt.Println("search index rebuilt")
	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := noteservice.NewService(st, nil)
	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "noteforge",
		Usage:  "Local note store with SQLite persistence, FTS5 full-text search, and JSON import/export",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and import watcher (default)",
				Flags:  []cli.Flag{configFlag},
				Action: serve,
			},
			{
				Name:  "export",
				Usage: "Write all notes to a JSON export file",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Destination file",
						Value:   "noteforge_export.json",
					},
				},
				Action: exportNotes,
			},
			{
				Name:  "import",
				Usage: "Merge a JSON export file into the store",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Export file to import",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "no-merge",
						Usage: "Insert every record as a new note instead of updating matching ids",
					},
				},
				Action: importNotes,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the full-text index from the notes table",
				Flags:  []cli.Flag{configFlag},
				Action: reindex,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tool interface on stdio",
				Flags:  []cli.Flag{configFlag},
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
