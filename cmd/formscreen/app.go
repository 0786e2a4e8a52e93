package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	formscreen "github.com/goliatone/go-formscreen"
	"github.com/goliatone/go-formscreen/internal/config"
	"github.com/goliatone/go-formscreen/internal/logging"
	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/loader"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
	"github.com/goliatone/go-formscreen/pkg/render"
	"github.com/goliatone/go-formscreen/pkg/renderers/prompt"
)

// app holds what the Before hook resolved for the subcommands.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	translator *i18n.Translations
	// driver answers fill prompts; nil uses the terminal.
	driver prompt.PromptDriver
}

// flag name -> config key
var configFlags = map[string]string{
	"address":     "address",
	"definitions": "definitions_dir",
	"locale":      "default_locale",
	"locales":     "locales_dir",
	"theme":       "theme",
	"variant":     "theme_variant",
	"log-level":   "log_level",
	"log-format":  "log_format",
}

func newApp() *cli.Command {
	return (&app{}).command()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "formscreen",
		Usage: "render quiz platform forms and screens from declarative definitions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (yaml, json or toml)"},
			&cli.StringFlag{Name: "definitions", Aliases: []string{"d"}, Usage: "directory with form and screen definitions"},
			&cli.StringFlag{Name: "locale", Aliases: []string{"l"}, Usage: "default locale (en, ar)"},
			&cli.StringFlag{Name: "locales", Usage: "directory with extra active.<locale>.toml catalogues"},
			&cli.StringFlag{Name: "theme", Usage: "theme name"},
			&cli.StringFlag{Name: "variant", Usage: "theme variant"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.renderFormCommand(),
			a.renderScreenCommand(),
			a.fillCommand(),
			a.serveCommand(),
			a.importOpenAPICommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	overrides := make(map[string]any)
	for flagName, key := range configFlags {
		if cmd.IsSet(flagName) {
			overrides[key] = cmd.String(flagName)
		}
	}
	cfg, err := config.Load(config.WithFile(cmd.String("config")), config.WithOverrides(overrides))
	if err != nil {
		return ctx, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.Root().ErrWriter})
	if err != nil {
		return ctx, err
	}

	i18nOpts := []i18n.Option{i18n.WithDefaultLocale(cfg.DefaultLocale)}
	if cfg.LocalesDir != "" {
		i18nOpts = append(i18nOpts, i18n.WithMessagesFS(os.DirFS(cfg.LocalesDir)))
	}
	translator, err := i18n.New(i18nOpts...)
	if err != nil {
		return ctx, err
	}

	a.cfg = cfg
	a.logger = logger
	a.translator = translator
	return logging.WithLogger(ctx, logger), nil
}

// store loads the definitions directory. A missing directory yields an empty
// store so import-openapi works from scratch.
func (a *app) store() (*loader.Store, error) {
	dir := a.cfg.DefinitionsDir
	if dir == "" {
		return loader.NewStore(), nil
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("definitions directory not found", "dir", dir)
			return loader.NewStore(), nil
		}
		return nil, err
	}
	store, err := loader.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load definitions from %s: %w", dir, err)
	}
	a.logger.Debug("definitions loaded", "dir", dir, "forms", len(store.FormIDs()), "screens", len(store.ScreenIDs()))
	return store, nil
}

func (a *app) orchestrator(extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	options := []orchestrator.Option{
		orchestrator.WithStore(store),
		orchestrator.WithTranslator(a.translator),
		orchestrator.WithDefaultLocale(a.cfg.DefaultLocale),
		orchestrator.WithLogger(a.logger),
		orchestrator.WithFetchTimeout(a.cfg.FetchTimeout),
		orchestrator.WithSubmitErrorPolicy(form.ParseSubmitErrorPolicy(a.cfg.SubmitErrorPolicy)),
		orchestrator.WithThemeSelector(render.NewManifestSelector(
			a.cfg.Theme,
			a.cfg.ThemeVariant,
			formscreen.DefaultThemeManifest(a.cfg.AssetsPrefix),
		)),
	}
	return orchestrator.New(append(options, extra...)...), nil
}

// writeOutput writes body to path, or to the command writer when path is
// empty.
func writeOutput(cmd *cli.Command, path string, body []byte) error {
	if path == "" {
		_, err := cmd.Root().Writer.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "written to %s\n", path)
	return nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	value := cmd.Args().First()
	if value == "" {
		return "", fmt.Errorf("%s: missing %s argument", cmd.Name, name)
	}
	return value, nil
}
