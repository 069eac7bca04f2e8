package cascade

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gotube/internal/config"
)

// Reconciler finishes cascade steps that failed at delete time.
type Reconciler struct {
	coord  *Coordinator
	ledger Ledger
	cfg    config.CascadeConfig
	logger *zap.Logger
}

func NewReconciler(coord *Coordinator, ledger Ledger, cfg config.CascadeConfig, logger *zap.Logger) *Reconciler {
	if ledger == nil {
		ledger = NopLedger{}
	}
	return &Reconciler{coord: coord, ledger: ledger, cfg: cfg, logger: logger}
}

// Start runs a pass every ReconcileInterval until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	if r.cfg.ReconcileInterval <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.ReconcileInterval)
	defer ticker.Stop()

	r.logger.Info("cascade reconciler started", zap.Duration("interval", r.cfg.ReconcileInterval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("cascade reconciler stopped")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Warn("cascade reconcile pass incomplete", zap.Error(err))
			}
		}
	}
}

// RunOnce retries one batch of pending steps. Steps that succeed are marked
// resolved; the others have their attempt count bumped.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	pending, err := r.ledger.Pending(ctx, r.cfg.MaxAttempts, r.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("load pending cascade failures: %w", err)
	}

	var errs error
	resolved := 0
	for _, f := range pending {
		if err := r.coord.Retry(ctx, f); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %s: %w", f.Entity, f.EntityID, f.Step, err))
			if ierr := r.ledger.IncrementAttempt(ctx, f.ID, err.Error()); ierr != nil {
				errs = multierr.Append(errs, ierr)
			}
			continue
		}
		if err := r.ledger.MarkResolved(ctx, f.ID); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		resolved++
	}

	if len(pending) > 0 {
		r.logger.Info("cascade reconcile pass",
			zap.Int("pending", len(pending)),
			zap.Int("resolved", resolved),
		)
	}
	return errs
}
