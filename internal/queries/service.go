package queries

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pesalens/pesalens/internal/analytics"
	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/ledger"
	"github.com/pesalens/pesalens/internal/logger"
	"github.com/pesalens/pesalens/internal/model"
)

const stage = "query"

// Latest names the most recently ingested ledger in place of an ID.
const Latest = "latest"

// NoDataMessage is the uniform payload for unavailable data.
const NoDataMessage = "No transaction data available"

// Store is the subset of ledger.Store the service reads from.
type Store interface {
	Load(ledgerID string) (*model.Ledger, error)
	Latest() (ledger.Entry, error)
}

// Service runs registered queries against stored ledgers.
type Service struct {
	store    Store
	registry *Registry
	metrics  *instrument.Metrics
}

// NewService creates a query Service.
func NewService(store Store, registry *Registry, metrics *instrument.Metrics) *Service {
	if metrics == nil {
		metrics = instrument.Nop()
	}
	return &Service{store: store, registry: registry, metrics: metrics}
}

// Registry returns the service's query registry.
func (s *Service) Registry() *Registry { return s.registry }

// Run loads the ledger, applies the derivation pass once and runs the named
// query. An unknown name is an InputError. Every other failure degrades to
// a DataUnavailable error and is logged.
func (s *Service) Run(ctx context.Context, ledgerID, name string) (result any, err error) {
	log := logger.Stage(logger.FromContext(ctx), stage).With().
		Str("ledger_id", ledgerID).Str("query", name).Logger()

	q, ok := s.registry.Get(name)
	if !ok {
		return nil, apperr.Input(apperr.UnknownQuery, stage, "unknown query %q", name)
	}

	defer func() {
		if p := recover(); p != nil {
			err = apperr.Computation(stage, name, fmt.Errorf("panic: %v", p))
			result = nil
		}
		if err != nil {
			err = s.degrade(log, err)
			s.metrics.Queries.WithLabelValues(name, instrument.OutcomeUnavailable).Inc()
			return
		}
		s.metrics.Queries.WithLabelValues(name, instrument.OutcomeOK).Inc()
	}()

	d, err := s.Dataset(ledgerID)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, c := range q.Columns {
		if !d.Ledger.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.Error{
			Kind:    apperr.KindUnavailable,
			Reason:  apperr.MissingQueryColumn,
			Stage:   stage,
			Message: fmt.Sprintf("ledger lacks columns %v", missing),
			Columns: missing,
		}
	}

	return q.Run(d)
}

// Dataset loads a ledger by ID (or Latest) and enriches it.
func (s *Service) Dataset(ledgerID string) (*analytics.Dataset, error) {
	if ledgerID == "" || ledgerID == Latest {
		entry, err := s.store.Latest()
		if err != nil {
			return nil, err
		}
		ledgerID = entry.LedgerID
	}
	l, err := s.store.Load(ledgerID)
	if err != nil {
		return nil, err
	}
	d := analytics.NewDataset(l)
	if d.Empty() {
		return nil, apperr.Unavailable(apperr.EmptyLedger, stage, "ledger %s has no transactions", ledgerID)
	}
	return d, nil
}

// degrade logs err and converts it to DataUnavailable.
func (s *Service) degrade(log zerolog.Logger, err error) error {
	e, ok := apperr.As(err)
	switch {
	case ok && e.Kind == apperr.KindUnavailable:
		log.Warn().Str("reason", string(e.Reason)).Err(err).Msg("query data unavailable")
		return e
	case ok:
		log.Error().Str("kind", string(e.Kind)).Str("reason", string(e.Reason)).Err(err).Msg("query failed")
		return &apperr.Error{Kind: apperr.KindUnavailable, Reason: e.Reason, Stage: stage, Message: NoDataMessage, Columns: e.Columns, Err: err}
	default:
		log.Error().Err(err).Msg("query failed")
		return apperr.Wrap(err, apperr.KindUnavailable, apperr.Coercion, stage, NoDataMessage)
	}
}
