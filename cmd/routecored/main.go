// Command routecored serves the shortest-path routing API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/routecore/routecore/auth"
	"github.com/routecore/routecore/config"
	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/httpapi"
	"github.com/routecore/routecore/jobs"
	"github.com/routecore/routecore/routing"
	"github.com/routecore/routecore/store"
)

var version = "dev"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:     "routecored",
		Short:   "Shortest-path routing service",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(log)
		},
		SilenceUsage: true,
	}

	if verbose := os.Getenv("ROUTECORE_DEBUG"); verbose != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := root.Execute(); err != nil {
		log.WithError(err).Fatal("routecored exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.WithError(cerr).Warn("store close failed")
		}
	}()

	graph := core.NewGraph()
	svc := routing.NewService(graph, st, log, cfg.Workers)

	manager, err := jobs.NewManager(svc, cfg.Workers, log)
	if err != nil {
		return err
	}
	defer manager.Close()

	api := httpapi.New(httpapi.Options{
		Routing:     svc,
		Store:       st,
		Auth:        auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL),
		Jobs:        manager,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return err
		}
		<-errCh

		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}
