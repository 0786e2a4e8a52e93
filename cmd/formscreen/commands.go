package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	formscreen "github.com/goliatone/go-formscreen"
	"github.com/goliatone/go-formscreen/components/collections"
	"github.com/goliatone/go-formscreen/components/collections/screenwiring"
	"github.com/goliatone/go-formscreen/internal/config"
	"github.com/goliatone/go-formscreen/internal/server"
	"github.com/goliatone/go-formscreen/pkg/model"
	pkgopenapi "github.com/goliatone/go-formscreen/pkg/openapi"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
	"github.com/goliatone/go-formscreen/pkg/render"
	"github.com/goliatone/go-formscreen/pkg/renderers/html"
	"github.com/goliatone/go-formscreen/pkg/renderers/prompt"
)

func (a *app) renderFormCommand() *cli.Command {
	return &cli.Command{
		Name:      "render-form",
		Usage:     "render a stored form as HTML",
		ArgsUsage: "<form-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
			&cli.StringFlag{Name: "values", Usage: "JSON object of field paths to prefill"},
			&cli.StringFlag{Name: "action", Usage: "override the form action URL"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := requireArg(cmd, "form-id")
			if err != nil {
				return err
			}
			var values map[string]any
			if raw := cmd.String("values"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &values); err != nil {
					return fmt.Errorf("render-form: --values: %w", err)
				}
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			result, err := orch.RenderForm(ctx, orchestrator.FormRequest{
				FormID:        id,
				Values:        values,
				ThemeName:     a.cfg.Theme,
				ThemeVariant:  a.cfg.ThemeVariant,
				RenderOptions: render.RenderOptions{Action: cmd.String("action")},
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, cmd.String("output"), result.Body)
		},
	}
}

func (a *app) renderScreenCommand() *cli.Command {
	return &cli.Command{
		Name:      "render-screen",
		Usage:     "render a stored screen as HTML, loading its tables",
		ArgsUsage: "<screen-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "table state, e.g. roster.page=1&roster.sort=name"},
			&cli.StringFlag{Name: "base-path", Usage: "path prefixed to generated links"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := requireArg(cmd, "screen-id")
			if err != nil {
				return err
			}
			query, err := url.ParseQuery(cmd.String("query"))
			if err != nil {
				return fmt.Errorf("render-screen: --query: %w", err)
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			body, err := orch.RenderScreen(ctx, orchestrator.ScreenRequest{
				ScreenID: id,
				Query:    query,
				BasePath: cmd.String("base-path"),
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, cmd.String("output"), body)
		},
	}
}

func (a *app) fillCommand() *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "fill a stored form interactively and print the submitted values",
		ArgsUsage: "<form-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json, form or pretty"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := requireArg(cmd, "form-id")
			if err != nil {
				return err
			}
			format, err := prompt.ParseOutputFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver(nil, nil, nil)
			}
			registry, err := renderers(prompt.WithPromptDriver(driver), prompt.WithOutputFormat(format))
			if err != nil {
				return err
			}
			orch, err := a.orchestrator(orchestrator.WithRegistry(registry))
			if err != nil {
				return err
			}
			result, err := orch.RenderForm(ctx, orchestrator.FormRequest{FormID: id, Renderer: "prompt"})
			if err != nil {
				return err
			}
			body := result.Body
			if len(body) > 0 && body[len(body)-1] != '\n' {
				body = append(body, '\n')
			}
			return writeOutput(cmd, cmd.String("output"), body)
		},
	}
}

// renderers registers the HTML and prompt renderers.
func renderers(promptOpts ...prompt.Option) (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	promptRenderer, err := prompt.New(promptOpts...)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}
	if err := registry.Register(promptRenderer); err != nil {
		return nil, err
	}
	return registry, nil
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve forms, screens and JSON collections over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "listen address"},
			&cli.StringFlag{Name: "collections", Usage: "directory of <name>.json collections (bundled students and quizzes if empty)"},
			&cli.StringSliceFlag{
				Name:  "bind",
				Usage: "point a table at a served collection: <screen>/<component>=<collection>",
			},
			&cli.BoolFlag{Name: "quiet", Usage: "disable request logs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			address := a.cfg.Address
			if cmd.IsSet("address") {
				address = cmd.String("address")
			}

			rows, err := loadCollections(cmd.String("collections"))
			if err != nil {
				return err
			}
			fns := []collections.OptionFn{collections.WithLocale(a.cfg.DefaultLocale)}
			for name, data := range rows {
				fns = append(fns, collections.WithCollection(name, data))
			}
			component := collections.New(fns...)

			var overrides []orchestrator.DataSourceOverride
			for _, raw := range cmd.StringSlice("bind") {
				override, err := parseBinding(raw, baseURL(address))
				if err != nil {
					return err
				}
				overrides = append(overrides, override)
			}

			orch, err := a.orchestrator(orchestrator.WithDataSourceOverrides(overrides))
			if err != nil {
				return err
			}
			srv := server.NewServer(&server.Options{
				Address:        address,
				DisableReqLogs: cmd.Bool("quiet"),
				Debug:          a.cfg.LogLevel == "debug",
				Orchestrator:   orch,
				Locales:        a.translator,
				Collections:    component,
				Assets:         formscreen.AssetsFS(),
				AssetsPrefix:   a.cfg.AssetsPrefix,
				Logger:         a.logger,
			})

			a.logger.Info("listening", "address", address)
			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			group.Go(func() error {
				<-groupCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Stop(shutdownCtx)
			})
			return group.Wait()
		},
	}
}

func loadCollections(dir string) (map[string][]map[string]any, error) {
	if dir == "" {
		return collections.DemoCollections()
	}
	return collections.LoadCollections(os.DirFS(dir), ".")
}

// parseBinding reads <screen>/<component>=<collection>.
func parseBinding(raw, base string) (orchestrator.DataSourceOverride, error) {
	target, collection, ok := strings.Cut(raw, "=")
	if !ok {
		return orchestrator.DataSourceOverride{}, fmt.Errorf("serve: --bind %q: expected <screen>/<component>=<collection>", raw)
	}
	screenID, componentID, ok := strings.Cut(target, "/")
	if !ok || screenID == "" || componentID == "" || collection == "" {
		return orchestrator.DataSourceOverride{}, fmt.Errorf("serve: --bind %q: expected <screen>/<component>=<collection>", raw)
	}
	return screenwiring.CollectionDataSource(screenID, componentID, collection, base), nil
}

// baseURL turns a listen address into a URL tables can fetch from.
func baseURL(address string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "http://" + address
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func (a *app) importOpenAPICommand() *cli.Command {
	return &cli.Command{
		Name:  "import-openapi",
		Usage: "build a form definition from an OpenAPI operation request body",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Required: true, Usage: "OpenAPI document path or URL"},
			&cli.StringFlag{Name: "operation", Required: true, Usage: "operation id"},
			&cli.StringFlag{Name: "form-id", Usage: "id of the generated form (defaults to the operation id)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout if empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src, err := pkgopenapi.ParseSource(cmd.String("source"))
			if err != nil {
				return fmt.Errorf("import-openapi: %w", err)
			}
			if src.Kind() == pkgopenapi.SourceKindURL && !a.cfg.AllowRemoteSpecs {
				return fmt.Errorf("import-openapi: remote sources are disabled (set %s_ALLOW_REMOTE_SPECS=true)", config.EnvPrefix)
			}

			var builderOpts []pkgopenapi.BuilderOption
			if id := cmd.String("form-id"); id != "" {
				builderOpts = append(builderOpts, pkgopenapi.WithFormID(id))
			}
			orch, err := a.orchestrator(orchestrator.WithOpenAPI(
				formscreen.NewLoader(pkgopenapi.WithHTTPFallback(a.cfg.FetchTimeout)),
				formscreen.NewParser(),
			))
			if err != nil {
				return err
			}
			def, err := orch.ImportOpenAPI(ctx, src, cmd.String("operation"), builderOpts...)
			if err != nil {
				return err
			}
			body, err := yaml.Marshal(map[string]map[string]model.FormDefinition{
				"forms": {def.ID: def},
			})
			if err != nil {
				return fmt.Errorf("import-openapi: encode: %w", err)
			}
			return writeOutput(cmd, cmd.String("output"), body)
		},
	}
}
