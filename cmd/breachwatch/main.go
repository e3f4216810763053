package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Pusher91/breachwatch/internal/config"
	"github.com/Pusher91/breachwatch/internal/domain"
	"github.com/Pusher91/breachwatch/internal/hibp"
	"github.com/Pusher91/breachwatch/internal/notify"
	"github.com/Pusher91/breachwatch/internal/scanner"
	"github.com/Pusher91/breachwatch/internal/store"
)

func main() {
	cfg := config.Load()

	var (
		emailsPath    = flag.String("emails", cfg.EmailsPath, "monitored email list, one address per line")
		dedupPath     = flag.String("dedup", cfg.DedupPath, "append-only log of already-alerted memberships")
		watermarkPath = flag.String("watermark", cfg.WatermarkPath, "last known breach record file")
		interval      = flag.Duration("interval", cfg.PaceInterval, "delay between consecutive lookups")
		dryRun        = flag.Bool("dry-run", false, "log alerts instead of sending mail")
	)
	flag.Parse()

	cfg.EmailsPath = *emailsPath
	cfg.DedupPath = *dedupPath
	cfg.WatermarkPath = *watermarkPath
	cfg.PaceInterval = *interval
	cfg.DryRun = *dryRun

	if details := cfg.Validate(); len(details) > 0 {
		for field, problem := range details {
			fmt.Fprintf(os.Stderr, "config: %s: %s\n", field, problem)
		}
		os.Exit(2)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}

	code := run(cfg, log)
	_ = log.Sync()
	os.Exit(code)
}

// run is separated from main so deferred cleanup survives os.Exit.
func run(cfg *config.Config, log *zap.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier domain.Notifier
	if cfg.DryRun {
		notifier = notify.NewLogNotifier(log)
	} else {
		notifier = notify.NewMailer(notify.Options{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		}, log)
	}

	fail := func(report domain.RunReport, err error) int {
		log.Error("run failed", zap.String("runId", report.RunID), zap.Error(err))
		if nerr := notifier.SendFailure(ctx, report, err); nerr != nil {
			log.Error("failure alert undeliverable", zap.Error(nerr))
		}
		return 1
	}

	bootReport := domain.RunReport{
		RunID:     domain.NewRunID(),
		Status:    domain.RunFailed,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}

	emails, err := store.ReadEmailList(cfg.EmailsPath)
	if err != nil {
		return fail(bootReport, fmt.Errorf("read email list: %w", err))
	}

	dedup, err := store.OpenDedupLog(cfg.DedupPath)
	if err != nil {
		// Unlike a missing watermark, a corrupt dedup log cannot be
		// treated as empty: that would re-alert on everything.
		return fail(bootReport, err)
	}
	defer dedup.Close()

	watermarks := store.NewWatermarkStore(cfg.WatermarkPath, log)

	source := hibp.NewClient(hibp.Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout,
	}, log)

	pacer := rate.NewLimiter(rate.Every(cfg.PaceInterval), 1)

	engine := scanner.New(source, dedup, watermarks, notifier, pacer, log)

	report, err := engine.Run(ctx, emails)
	if err != nil {
		return fail(report, err)
	}

	log.Info("run finished",
		zap.String("runId", report.RunID),
		zap.String("status", string(report.Status)),
		zap.Int("emailsChecked", report.EmailsChecked),
		zap.Int("indeterminate", report.Indeterminate),
		zap.Int("newMemberships", report.NewMemberships))
	return 0
}
