package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Pusher91/breachwatch/internal/domain"
)

// LogNotifier is the dry-run delivery boundary: findings and failures
// are written to the log instead of leaving the process.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) SendAlert(ctx context.Context, findings *domain.Findings) error {
	_ = ctx
	for _, email := range findings.Emails() {
		for _, m := range findings.ForEmail(email) {
			n.log.Info("dry-run breach alert",
				zap.String("email", m.Email),
				zap.String("breach", m.BreachName),
				zap.String("date", m.BreachDate))
		}
	}
	return nil
}

func (n *LogNotifier) SendFailure(ctx context.Context, report domain.RunReport, runErr error) error {
	_ = ctx
	n.log.Error("dry-run failure alert",
		zap.String("runId", report.RunID),
		zap.Error(runErr))
	return nil
}
