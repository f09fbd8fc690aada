package cli

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familygraph/internal/server"
	"github.com/matzehuels/familygraph/pkg/observability"
	"github.com/matzehuels/familygraph/pkg/settings"
	"github.com/matzehuels/familygraph/pkg/source"
)

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	addr      string
	title     string
	noMetrics bool
	noCache   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live family tree over HTTP",
		Long: `Serve runs the force simulation continuously and exposes it over HTTP.
The tree reloads whenever the data source reports a change, and view
settings changed through the API are applied without restarting.

Endpoints:
  GET   /api/graph              nodes, edges and diagnostics
  GET   /api/frame.svg          current frame as SVG
  GET   /api/frame              current frame as JSON
  GET   /api/export/{format}    settled render (svg, png, pdf, json, dot)
  GET   /api/members            member list
  POST  /api/members            add a member
  POST  /api/nodes/{id}/drag    drag a node (start, move, end)
  GET   /api/settings           view settings
  PUT   /api/settings           replace view settings
  PATCH /api/settings           change individual settings
  GET   /metrics                Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&flags.title, "title", "", "graph title")
	cmd.Flags().BoolVar(&flags.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the export cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if flags.addr != "" {
		addr = flags.addr
	}

	var gatherer prometheus.Gatherer
	if !flags.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		observability.NewPrometheusHooks(reg).Install()
		defer observability.Reset()
		gatherer = reg
	}

	src, err := c.newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var srv *server.Server
	feed := source.NewFeed(src,
		source.WithFeedLogger(logger),
		source.WithRetry(3, defaultRetryDelay),
		source.WithNotifier(source.NotifierFunc(func(n source.Notice) {
			if srv != nil {
				srv.Notify(n)
			}
		})),
	)

	srv = server.New(server.Config{
		Feed:     feed,
		Store:    settings.NewStore(cfg.View),
		Runner:   runner,
		Width:    cfg.Viewport.Width,
		Height:   cfg.Viewport.Height,
		Seed:     cfg.Viewport.Seed,
		Params:   cfg.Viewport.Params,
		Title:    flags.title,
		Gatherer: gatherer,
		Logger:   logger,
	})

	printSuccess("Serving %s", src.Name())
	printKeyValue("Graph", StyleLink.Render(displayURL(addr)+"/api/frame.svg"))
	if gatherer != nil {
		printKeyValue("Metrics", StyleLink.Render(displayURL(addr)+"/metrics"))
	}

	err = srv.Run(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// displayURL turns a listen address into a clickable local URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
