// Command gammu-gateway runs a Gateway as a standalone process: it
// polls an attached GSM modem through the gammu-json helper and logs
// every lifecycle event, exposing Prometheus metrics over HTTP.
//
// It is a thin bootstrap; embedders that want programmatic control
// over handlers should import github.com/foxcpp/gammu-gateway
// directly instead of shelling out to this binary.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	gammu "github.com/foxcpp/gammu-gateway"
	"github.com/foxcpp/gammu-gateway/framework/log"
)

func main() {
	app := &cli.App{
		Name:  "gammu-gateway",
		Usage: "poll a GSM modem through gammu-json and dispatch SMS lifecycle events",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "gammu-json", Value: "gammu-json", Usage: "path to the gammu-json helper"},
			&cli.DurationFlag{Name: "interval", Value: 5 * time.Second, Usage: "poll interval"},
			&cli.IntFlag{Name: "transmit-batch-size", Value: 64},
			&cli.IntFlag{Name: "delete-batch-size", Value: 1024},
			&cli.IntFlag{Name: "max-transmit-attempts", Value: 2, Usage: "0 disables the retry limit"},
			&cli.StringFlag{Name: "prefix", Usage: "prepend <prefix>/bin to PATH for the helper"},
			&cli.BoolFlag{Name: "debug"},
			&cli.StringFlag{Name: "metrics-addr", Value: "", Usage: "if set, serve Prometheus metrics on this address (e.g. :9110)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := log.Logger{Out: log.WriterOutput(os.Stderr, true), Name: "gammu-gateway", Debug: c.Bool("debug")}

	opts := gammu.Options{
		GammuJSONPath:       c.String("gammu-json"),
		Interval:            c.Duration("interval"),
		TransmitBatchSize:   c.Int("transmit-batch-size"),
		DeleteBatchSize:     c.Int("delete-batch-size"),
		MaxTransmitAttempts: c.Int("max-transmit-attempts"),
		Prefix:              c.String("prefix"),
		Debug:               c.Bool("debug"),
		Logger:              logger,
	}

	if addr := c.String("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		opts.MetricsRegisterer = reg
		go serveMetrics(addr, reg, logger)
	}

	gw := gammu.New(opts)
	registerLoggingHandlers(gw, logger)

	if err := gw.Start(); err != nil {
		return err
	}
	logger.Printf("polling started (interval=%s)", opts.Interval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Println("shutting down, waiting for in-flight poll to finish")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return gw.Stop(ctx)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// http.Server wants a *log.Logger, not our Logger; zap.NewStdLog
	// bridges logger.Zap() to that stdlib interface.
	srv := &http.Server{
		Addr:     addr,
		Handler:  mux,
		ErrorLog: zap.NewStdLog(logger.Zap()),
	}

	logger.Printf("serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("metrics server stopped", err)
	}
}

// registerLoggingHandlers wires a log line to every lifecycle event so
// the standalone binary is observable without an embedder; library
// users are expected to register their own.
func registerLoggingHandlers(gw *gammu.Gateway, logger log.Logger) {
	_ = gw.On("receive", func(msg gammu.Message, done func(error)) {
		logger.Printf("received message from %s (%d byte(s))", msg.From, len(msg.Content))
		done(nil)
	})
	_ = gw.On("transmit", func(msg gammu.Message, result gammu.SendResult) {
		logger.Printf("transmitted to %s: %s", msg.From, result.Result)
	})
	_ = gw.On("error", func(err error, msg *gammu.Message) {
		logger.Error("gateway error", err)
	})
	_ = gw.On("release_segments", func(id string) {
		logger.Debugf("released segments for %s", id)
	})
}
