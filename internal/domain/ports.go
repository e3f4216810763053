package domain

import "context"

type BreachSource interface {
	// LatestBreach returns the most recently added breach known to the
	// source.
	LatestBreach(ctx context.Context) (BreachRecord, error)

	// Lookup returns every breach the email appears in. An empty result
	// with a nil error means the source positively reported no breaches;
	// an ambiguous answer is an ErrSourceIndeterminate error, never an
	// empty result.
	Lookup(ctx context.Context, email string) ([]BreachRecord, error)
}

type DedupStore interface {
	Contains(email, breachName string) bool
	// Append records a membership durably. Appending an already-known
	// (email, breach) pair is a no-op.
	Append(m Membership) error
}

type WatermarkStore interface {
	// Load returns nil with no error when no watermark has been saved.
	Load() (*BreachRecord, error)
	Save(rec BreachRecord) error
}

type Notifier interface {
	SendAlert(ctx context.Context, findings *Findings) error
	SendFailure(ctx context.Context, report RunReport, runErr error) error
}

// Pacer gates consecutive source lookups. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}
