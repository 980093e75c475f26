package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/form"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/handler"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/service"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
)

const shutdownTimeout = 5 * time.Second

func (cli *commandLine) monitor(ctx context.Context, args []string) error {
	fs := cli.flags("monitor")
	rawInterval := fs.String("interval", "", "Auto-refresh: off, 10s, 30s or 60s. Defaults to MONITOR_INTERVAL.")
	serveHTTP := fs.Bool("serve", false, "Also serve the snapshot and metrics on MONITOR_PORT.")
	once := fs.Bool("once", false, "Fetch once, print and exit.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	interval := cli.cfg.Monitor.Interval
	if *rawInterval != "" {
		var err error
		if interval, err = config.ParseMonitorInterval(*rawInterval); err != nil {
			return err
		}
	}

	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	perf, err := console.Monitor.Fetch(ctx)
	if err != nil {
		return err
	}
	cli.printPerformance(perf)
	if *once {
		return nil
	}

	console.Monitor.OnUpdate(cli.onPerformance)
	if err := console.Monitor.SetInterval(ctx, interval); err != nil {
		return err
	}
	defer console.Monitor.Stop()

	if !*serveHTTP {
		if interval == 0 {
			return nil
		}
		<-ctx.Done()
		return nil
	}
	router := handler.NewMonitorRouter(cli.cfg, cli.logger, cli.metrics, console.Monitor)
	return serve(ctx, cli.logger, ":"+strconv.Itoa(cli.cfg.Monitor.Port), router)
}

// onPerformance prints each poll. A failed poll raises an error banner that
// stays until the next good poll, which shows a short-lived recovery notice.
func (cli *commandLine) onPerformance(p service.Performance, err error) {
	if err != nil {
		b := cli.alert(err, "Failed to fetch performance data")
		fmt.Fprintf(cli.out, "%s  poll failed: %s\n", cli.clock().Format("15:04:05"), b.Text)
		return
	}
	if cli.banner != nil && cli.banner.Error {
		cli.banner.Dismiss()
		cli.banner = form.SuccessBanner("Performance data restored", cli.clock(), cli.cfg.Forms.BannerTTL)
	}
	cli.printPerformance(p)
}

func (cli *commandLine) printPerformance(p service.Performance) {
	suffix := ""
	if cli.banner.Visible(cli.clock()) {
		suffix = "  [" + cli.banner.Text + "]"
	}
	fmt.Fprintf(cli.out, "%s  status=%s cpu=%s%% mem=%s%% sessions=%d errors=%d (%s%%) rpm=%s avg=%sms%s\n",
		p.FetchedAt.Local().Format("15:04:05"),
		p.Health.Status,
		number(p.Health.CPUUsage),
		number(p.Health.Memory.Percentage),
		p.Sessions.Total,
		p.Errors.Total,
		number(p.Errors.Rate),
		number(p.Metrics.RequestsPerMinute),
		number(p.Metrics.AvgResponseTime),
		suffix,
	)
}

// serve runs h on addr until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, logger *zap.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("addr", addr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return srv.Close()
		}
		return nil
	}
}
