package server

import (
	"context"
	"net/http"
	"time"

	"github.com/iov-one/tokenswap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StartConfig configures the processes run by Start.
type StartConfig struct {
	// Bind is the address the ABCI socket server listens on.
	Bind string
	// MetricsAddr is the address serving /metrics. Empty disables it.
	MetricsAddr string
	// Gatherer provides the exposed metrics. Defaults to
	// prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// MetricsHandler returns the handler serving the metrics of g.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// Start serves the application over an ABCI socket until ctx is done.
func Start(ctx context.Context, app abci.Application, logger log.Logger, conf StartConfig) error {
	logger.Info("Starting ABCI app", "bind", conf.Bind)
	svr, err := server.NewServer(conf.Bind, "socket", app)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot listen on %s: %s", conf.Bind, err)
	}

	var metrics *http.Server
	failed := make(chan error, 1)
	if conf.MetricsAddr != "" {
		g := conf.Gatherer
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		metrics = &http.Server{
			Addr:              conf.MetricsAddr,
			Handler:           MetricsHandler(g),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics", "addr", conf.MetricsAddr)
			if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				failed <- errors.Wrap(errors.ErrInput, err.Error())
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-failed:
	}

	logger.Info("Shutting down")
	if metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := metrics.Shutdown(shutdownCtx); serr != nil {
			logger.Error("Metrics server shutdown", "err", serr)
		}
	}
	if serr := svr.Stop(); serr != nil {
		logger.Error("ABCI server shutdown", "err", serr)
	}
	return err
}
