package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/shopchat/internal/calc"
	"github.com/Tyrowin/shopchat/internal/server"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "port", Usage: "shop API listen address, e.g. :8080"},
		&cli.StringFlag{Name: "calc-port", Usage: "calc app listen address, e.g. :8081"},
		&cli.StringFlag{Name: "log-level", Usage: "logrus level (debug, info, warn, error)"},
		&cli.StringFlag{Name: "env-file", Usage: "optional dotenv file loaded before the environment is read", Value: ".env"},
	}

	return &cli.App{
		Name:  "shopchat",
		Usage: "in-memory shop API with room chat, plus the calc app",
		Flags: flags,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the shop API and the calc app",
				Flags:  flags,
				Action: func(c *cli.Context) error { return run(c, true, true) },
			},
			{
				Name:   "shop",
				Usage:  "run only the shop API",
				Flags:  flags,
				Action: func(c *cli.Context) error { return run(c, true, false) },
			},
			{
				Name:   "calc",
				Usage:  "run only the calc app",
				Flags:  flags,
				Action: func(c *cli.Context) error { return run(c, false, true) },
			},
		},
		Action: func(c *cli.Context) error { return run(c, true, true) },
	}
}

// loadConfig reads the dotenv file when present, then the environment, then
// applies command line overrides.
func loadConfig(c *cli.Context) (*server.Config, error) {
	if path := c.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}

	cfg, err := server.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}
	if port := c.String("calc-port"); port != "" {
		cfg.CalcPort = port
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func run(c *cli.Context, withShop, withCalc bool) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := cfg.Logger()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if withShop {
		srv := server.New(cfg, log.WithField("app", "shop"))
		httpServer := server.CreateServer(cfg.Port, srv.SetupRoutes())
		serveUntilDone(ctx, g, httpServer, cfg, log.WithField("app", "shop"), func() {
			if err := srv.Hub().Shutdown(cfg.ShutdownTimeout); err != nil {
				log.WithError(err).Warn("Chat hub did not stop cleanly")
			}
		})
	}

	if withCalc {
		handler := calc.NewHandler(cfg.CalcMaxArgument, log.WithField("app", "calc"))
		httpServer := server.CreateServer(cfg.CalcPort, handler)
		serveUntilDone(ctx, g, httpServer, cfg, log.WithField("app", "calc"), nil)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}

// serveUntilDone runs httpServer in the group and shuts it down once ctx is
// cancelled, by a signal or by a sibling server failing. afterShutdown runs
// once the listener has stopped.
func serveUntilDone(ctx context.Context, g *errgroup.Group, httpServer *http.Server, cfg *server.Config, log logrus.FieldLogger, afterShutdown func()) {
	g.Go(func() error {
		return server.StartServer(httpServer, log)
	})
	g.Go(func() error {
		<-ctx.Done()
		err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, log)
		if afterShutdown != nil {
			afterShutdown()
		}
		return err
	})
}
