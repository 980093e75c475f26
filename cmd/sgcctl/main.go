package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shehrozeikram/SGCEducation-sub002/pkg/config"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/logger"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commandLine{
		cfg:          cfg,
		logger:       logr,
		metrics:      metrics.New(),
		out:          os.Stdout,
		in:           bufio.NewReader(os.Stdin),
		readPassword: readPasswordFunc,
		now:          time.Now,
	}
	defer cli.close()

	if err := cli.run(ctx, os.Args); err != nil {
		if errors.Is(err, errHelp) {
			return 2
		}
		fmt.Fprintln(os.Stderr, "error:", cli.alert(err, err.Error()).Text)
		return 1
	}
	return 0
}
