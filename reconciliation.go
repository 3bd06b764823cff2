/*
Copyright 2025 The Reckon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package reckon

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/minitug/reckon/config"
	"github.com/minitug/reckon/database"
	"github.com/minitug/reckon/internal/apierror"
	redlock "github.com/minitug/reckon/internal/lock"
	"github.com/minitug/reckon/model"
)

const (
	// reconcileLockKey serializes persisting runs across processes. Dry-runs
	// never take it.
	reconcileLockKey = "reconcile:persist"
	reconcileLockTTL = 30 * time.Second
)

// RunReconciliation validates the config, matches the current unmatched
// snapshots and, when cfg.Persist is set, commits the proposed matches
// atomically. Dry-runs leave the store untouched and are idempotent: two
// consecutive dry-runs over the same store produce identical summaries.
func (r *Reckon) RunReconciliation(ctx context.Context, cfg model.MatchConfig) (*model.MatchSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), err)
	}

	invoices, err := r.datasource.GetUnmatchedInvoices(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load unmatched invoices", err)
	}
	bank, err := r.datasource.GetUnmatchedBankTransactions(ctx)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load unmatched bank transactions", err)
	}

	result := MatchRecords(invoices, bank, cfg, r.pspDetect)

	if cfg.Persist && len(result.Matches) > 0 {
		if err := r.persistMatches(ctx, result.Matches); err != nil {
			return nil, err
		}
	}

	return summarize(result.Matches), nil
}

// persistMatches commits a run's matches under the reconciliation lock. A
// concurrent run that loses the lock, or whose records were claimed between
// snapshot and commit, gets a conflict; nothing is partially applied.
func (r *Reckon) persistMatches(ctx context.Context, matches []model.Match) error {
	locker := redlock.NewLocker(r.redis, reconcileLockKey, model.GenerateUUIDWithSuffix("lock"))
	if err := locker.Lock(ctx, reconcileLockTTL); err != nil {
		return apierror.NewAPIError(apierror.ErrConflict, "another reconciliation run is persisting", err)
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Warnf("failed to release reconciliation lock: %v", err)
		}
	}()

	if err := r.datasource.RecordMatches(ctx, matches); err != nil {
		if errors.Is(err, database.ErrMatchConflict) {
			return apierror.NewAPIError(apierror.ErrConflict, "records were claimed by a concurrent run, retry against the current unmatched set", err)
		}
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to persist matches", err)
	}

	r.invalidateOverview(ctx)
	return nil
}

// summarize projects a run's matches into per-rule totals plus the tail of
// the match list for display.
func summarize(matches []model.Match) *model.MatchSummary {
	summary := &model.MatchSummary{Recent: []model.RecentMatch{}}
	for _, m := range matches {
		switch m.Rule {
		case model.RuleExactPair:
			summary.TotalRule1++
		case model.RuleRelaxedPair:
			summary.TotalRule2++
		case model.RulePSPBatch:
			summary.TotalRule3++
		}
	}

	limit := config.DefaultRecentMatches
	if cnf, err := config.Fetch(); err == nil {
		limit = cnf.Reconciliation.RecentMatches
	}
	start := len(matches) - limit
	if start < 0 {
		start = 0
	}
	for _, m := range matches[start:] {
		summary.Recent = append(summary.Recent, model.RecentMatch{
			Rule:       m.Rule,
			MatchID:    m.MatchID,
			InvoiceIDs: m.InvoiceIDs,
			BankIDs:    m.BankIDs,
		})
	}
	return summary
}
