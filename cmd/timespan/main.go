package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"timespan/internal/agenda"
	"timespan/internal/config"
	appLog "timespan/internal/log"
	"timespan/internal/web"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "timespan",
	Short:         "Free-time finder over ICS calendars",
	Long:          "timespan reads ICS calendar feeds and answers where the free time in a workday is.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with periodic calendar refresh",
	RunE:  runServe,
}

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "Print the free time of one workday",
	RunE:  runFree,
}

var (
	listenOverride string
	freeDate       string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/timespan/config.yaml", "Path to config file")
	serveCmd.Flags().StringVar(&listenOverride, "listen", "", "HTTP listen address (overrides config if set)")
	freeCmd.Flags().StringVar(&freeDate, "date", "", "Day to inspect as YYYY-MM-DD (default today)")

	rootCmd.AddCommand(serveCmd, freeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenOverride != "" {
		cfg.Listen = listenOverride
	}

	appLog.Info("timespan starting",
		"version", version,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"workday", cfg.Workday.Start+"-"+cfg.Workday.End,
		"refresh", cfg.RefreshCron,
		"ics_count", len(cfg.ICS),
	)

	ag := agenda.New(cfg)
	metrics := web.NewMetrics()

	refresher, err := agenda.NewRefresher(ag, cfg.RefreshCron)
	if err != nil {
		return fmt.Errorf("refresh schedule %q: %w", cfg.RefreshCron, err)
	}
	refresher.OnRefresh = metrics.ObserveRefresh
	go refresher.Start()

	httpServer := web.NewServer(cfg, ag, metrics).HTTPServer()
	serveErr := make(chan error, 1)
	go func() {
		appLog.Info("HTTP server listening", "addr", "http://"+cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLog.Info("signal received, shutting down", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			appLog.Error("http server error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		appLog.Error("graceful shutdown failed", err)
	}
	refresher.Stop(ctx)

	appLog.Info("timespan stopped")
	return nil
}

func runFree(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ag := agenda.New(cfg)
	loc := ag.Location()

	day := time.Now().In(loc)
	if freeDate != "" {
		day, err = time.ParseInLocation("2006-01-02", freeDate, loc)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()
	if err := ag.Refresh(ctx); err != nil && !errors.Is(err, agenda.ErrNoSources) {
		// Partial data is still worth printing.
		appLog.Error("refresh had failures", err)
	}

	sched, err := ag.Day(day)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "workday %s\n", sched.FormatIn(loc))
	free := sched.FreeTime()
	if len(free) == 0 {
		fmt.Fprintln(out, "no free time")
		return nil
	}
	for _, s := range free {
		fmt.Fprintf(out, "  %s  (%s)\n", s.FormatIn(loc), time.Duration(s.Duration())*time.Second)
	}
	return nil
}
