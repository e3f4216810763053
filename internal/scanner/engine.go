// Package scanner holds the run orchestration: watermark-gated scan
// decision, paced per-email lookups, dedup filtering and findings
// accumulation.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Pusher91/breachwatch/internal/domain"
)

type Engine struct {
	source     domain.BreachSource
	dedup      domain.DedupStore
	watermarks domain.WatermarkStore
	notifier   domain.Notifier
	pacer      domain.Pacer
	log        *zap.Logger
}

func New(
	source domain.BreachSource,
	dedup domain.DedupStore,
	watermarks domain.WatermarkStore,
	notifier domain.Notifier,
	pacer domain.Pacer,
	log *zap.Logger,
) *Engine {
	return &Engine{
		source:     source,
		dedup:      dedup,
		watermarks: watermarks,
		notifier:   notifier,
		pacer:      pacer,
		log:        log,
	}
}

// Run executes one scan cycle. The watermark is saved before any email
// is looked up, so a crash mid-scan cannot re-trigger the same "new
// breach" condition forever; the dedup log, not watermark timing, is
// what prevents duplicate alerts.
func (e *Engine) Run(ctx context.Context, emails []string) (report domain.RunReport, err error) {
	report = domain.RunReport{
		RunID:     domain.NewRunID(),
		Status:    domain.RunFailed,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	}()

	log := e.log.With(zap.String("runId", report.RunID))

	watermark, err := e.watermarks.Load()
	if err != nil {
		return report, fmt.Errorf("load watermark: %w", err)
	}

	latest, err := e.source.LatestBreach(ctx)
	if err != nil {
		return report, err
	}

	if watermark != nil {
		newer, err := latest.AddedAfter(*watermark)
		if err != nil {
			// The stored watermark never parses unless tampered with;
			// the store already degrades that to nil. A bad AddedDate
			// here came from the source itself.
			return report, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		if !newer {
			log.Info("no new breach since last run, skipping scan",
				zap.String("latest", latest.Name),
				zap.String("addedDate", latest.AddedDate))
			report.Status = domain.RunSkipped
			return report, nil
		}
	}

	log.Info("new breach observed, scanning all monitored emails",
		zap.String("latest", latest.Name),
		zap.String("addedDate", latest.AddedDate),
		zap.Int("emails", len(emails)))

	if err := e.watermarks.Save(latest); err != nil {
		return report, fmt.Errorf("save watermark: %w", err)
	}

	findings := domain.NewFindings()

	for _, email := range emails {
		// The pacer starts with one free token, so this blocks between
		// consecutive lookups only: no delay before the first and none
		// after the last.
		if err := e.pacer.Wait(ctx); err != nil {
			e.deliver(ctx, log, findings, &report)
			return report, fmt.Errorf("pacing interrupted: %w", err)
		}

		records, err := e.source.Lookup(ctx, email)
		if errors.Is(err, domain.ErrSourceIndeterminate) {
			// Ambiguous answer: skip this address, never mark it clean.
			report.Indeterminate++
			continue
		}
		if err != nil {
			// Memberships already appended are durable and correct;
			// hand them over before surfacing the failure so they are
			// not silently dropped.
			e.deliver(ctx, log, findings, &report)
			return report, err
		}

		report.EmailsChecked++

		for _, rec := range records {
			if e.dedup.Contains(email, rec.Name) {
				continue
			}

			date, derr := domain.FormatBreachDate(rec.BreachDate)
			if derr != nil {
				date = rec.BreachDate
			}

			m := domain.Membership{Email: email, BreachName: rec.Name, BreachDate: date}
			if err := e.dedup.Append(m); err != nil {
				e.deliver(ctx, log, findings, &report)
				return report, err
			}
			findings.Add(m)

			log.Info("new breach membership",
				zap.String("email", email),
				zap.String("breach", rec.Name))
		}
	}

	report.NewMemberships = findings.Total()
	report.Status = domain.RunCompleted

	if !findings.Empty() {
		if err := e.notifier.SendAlert(ctx, findings); err != nil {
			// Durable state stays; only delivery failed.
			return report, fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
		}
	}

	return report, nil
}

// deliver flushes accumulated findings on the failure path. Their dedup
// entries are already durable, so a dropped alert here would be lost
// for good.
func (e *Engine) deliver(ctx context.Context, log *zap.Logger, findings *domain.Findings, report *domain.RunReport) {
	report.NewMemberships = findings.Total()
	if findings.Empty() {
		return
	}
	if err := e.notifier.SendAlert(ctx, findings); err != nil {
		log.Error("partial findings alert failed", zap.Error(err))
	}
}
