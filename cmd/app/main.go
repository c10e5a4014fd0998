package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quire/internal"
	"github.com/starford/quire/internal/collection"
	pkgconfig "github.com/starford/quire/pkg/config"
)

const defaultConfigFile = "quire.yaml"

// loadConfig reads the root --config file. The default file is optional;
// one named explicitly must exist.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	root := cmd.Root()
	configPath := root.String("config")

	cfg := internal.NewDefaultConfig()
	if root.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}
	if _, err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func newCommands() []*cli.Command {
	var cmds []*cli.Command
	for _, info := range collection.All() {
		cmds = append(cmds, &cli.Command{
			Name:    info.Name,
			Aliases: info.Aliases,
			Usage:   "Create a new " + info.Label,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				return internal.Scaffold(ctx, info.Kind, internal.WithConfig(cfg))
			},
		})
	}
	return cmds
}

func check(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Check(ctx, internal.WithConfig(cfg))
}

func list(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lo := internal.ListOptions{
		Kind:   cmd.String("kind"),
		Tag:    cmd.String("tag"),
		Drafts: cmd.Bool("drafts"),
		Query:  cmd.String("query"),
		Limit:  int(cmd.Int("limit")),
	}
	return internal.List(ctx, lo, internal.WithConfig(cfg))
}

func tags(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Tags(ctx, cmd.String("kind"), internal.WithConfig(cfg))
}

func watch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Watch(ctx, internal.WithConfig(cfg))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func kindFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kind",
		Aliases: []string{"k"},
		Usage:   "Only this collection (post, note, lab, essay or an alias)",
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "quire",
		Usage: "Scaffold, check and catalog the content collections of a Markdown site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigFile,
				Value:       defaultConfigFile,
				Sources:     cli.EnvVars("QUIRE_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:     "new",
				Usage:    "Create a new entry interactively",
				Commands: newCommands(),
			},
			{
				Name:   "check",
				Usage:  "Validate every entry against its collection schema",
				Action: check,
			},
			{
				Name:  "list",
				Usage: "List catalogued entries, newest first",
				Flags: []cli.Flag{
					kindFlag(),
					&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Only entries with this tag"},
					&cli.BoolFlag{Name: "drafts", Usage: "Only drafts"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Full-text search instead of listing"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of results"},
				},
				Action: list,
			},
			{
				Name:   "tags",
				Usage:  "Show how often each tag is used",
				Flags:  []cli.Flag{kindFlag()},
				Action: tags,
			},
			{
				Name:   "watch",
				Usage:  "Keep the catalog current and re-validate entries as they change",
				Action: watch,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
