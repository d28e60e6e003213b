// Package ingest runs an uploaded statement through extraction,
// normalization, classification and storage.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pesalens/pesalens/internal/analytics"
	"github.com/pesalens/pesalens/internal/apperr"
	"github.com/pesalens/pesalens/internal/classify"
	"github.com/pesalens/pesalens/internal/derive"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/ledger"
	"github.com/pesalens/pesalens/internal/logger"
	"github.com/pesalens/pesalens/internal/model"
	"github.com/pesalens/pesalens/internal/normalize"
	"github.com/pesalens/pesalens/internal/statement"
)

// DefaultPreviewLimit bounds the records returned with an ingestion result.
const DefaultPreviewLimit = 1000

const outcomeOK = "ok"

// Store persists classified ledgers.
type Store interface {
	Save(l *model.Ledger, src ledger.Source) (ledger.Entry, error)
	Path(ledgerID string) string
}

// Committer records a saved ledger in version control.
type Committer interface {
	Commit(message string, paths ...string) (string, error)
}

// Upload is one statement document submitted for ingestion.
type Upload struct {
	Filename    string
	ContentType string // detected from Filename and Data when empty
	Data        []byte
	Password    string
}

// Result summarizes a successful ingestion.
type Result struct {
	LedgerID        string          `json:"ledger_id"`
	Path            string          `json:"path"`
	Filename        string          `json:"file_name"`
	ContentType     string          `json:"content_type"`
	CustomerName    string          `json:"customer_name"`
	MobileNumber    string          `json:"mobile_number"`
	TotalRecords    int             `json:"total_records"`
	ReturnedRecords int             `json:"returned_records"`
	Commit          string          `json:"commit,omitempty"`
	Data            []analytics.Row `json:"data"`
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	extractors   *statement.Registry
	classifier   *classify.Classifier
	store        Store
	metrics      *instrument.Metrics
	committer    Committer
	previewLimit int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records stage durations and outcomes in m.
func WithMetrics(m *instrument.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCommitter commits every saved ledger through c.
func WithCommitter(c Committer) Option {
	return func(p *Pipeline) { p.committer = c }
}

// WithPreviewLimit sets how many records a Result carries. n <= 0 keeps
// the default.
func WithPreviewLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.previewLimit = n
		}
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(extractors *statement.Registry, classifier *classify.Classifier, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractors:   extractors,
		classifier:   classifier,
		store:        store,
		metrics:      instrument.Nop(),
		previewLimit: DefaultPreviewLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest extracts, cleans, classifies and stores one statement. Nothing is
// persisted unless every stage succeeds.
func (p *Pipeline) Ingest(ctx context.Context, up Upload) (res *Result, err error) {
	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = statement.DetectContentType(up.Filename, up.Data)
	}
	log := logger.FromContext(ctx).With().
		Str("file", up.Filename).Str("content_type", contentType).Logger()

	defer func() {
		outcome := outcomeOK
		if err != nil {
			outcome = string(apperr.KindComputation)
			if e, ok := apperr.As(err); ok {
				outcome = string(e.Reason)
			}
			log.Error().Str("outcome", outcome).Err(err).Msg("ingestion failed")
		}
		p.metrics.Ingestions.WithLabelValues(outcome).Inc()
	}()

	// extract
	var doc *statement.Document
	err = p.timed(ctx, log, "extract", func(ctx context.Context) error {
		ex, err := p.extractors.Lookup(contentType)
		if err != nil {
			return err
		}
		doc, err = ex.Extract(ctx, up.Data, up.Password)
		if err != nil {
			return err
		}
		if doc == nil || len(doc.Tables) == 0 {
			return apperr.Input(apperr.NoTablesExtracted, "extract", "no tables were extracted from %s", up.Filename)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// normalize
	var l *model.Ledger
	err = p.timed(ctx, log, "normalize", func(context.Context) error {
		var (
			stats *normalize.Stats
			nerr  error
		)
		l, stats, nerr = normalize.Normalize(doc.Tables)
		if stats != nil {
			p.recordStats(log, stats)
		}
		return nerr
	})
	if err != nil {
		return nil, err
	}

	// classify
	err = p.timed(ctx, log, "classify", func(context.Context) error {
		dropped, err := p.classifier.Apply(l)
		p.metrics.Dropped.WithLabelValues("charges").Add(float64(dropped))
		return err
	})
	if err != nil {
		return nil, err
	}
	derive.ApplyCalendar(l)

	// store
	var entry ledger.Entry
	err = p.timed(ctx, log, "store", func(context.Context) error {
		var serr error
		entry, serr = p.store.Save(l, ledger.Source{
			Filename:     up.Filename,
			ContentType:  contentType,
			HolderName:   doc.Holder.Name,
			HolderMobile: doc.Holder.MobileNumber,
		})
		return serr
	})
	if err != nil {
		return nil, err
	}
	p.metrics.Transactions.Add(float64(l.Len()))

	path := p.store.Path(entry.LedgerID)
	res = &Result{
		LedgerID:     entry.LedgerID,
		Path:         path,
		Filename:     up.Filename,
		ContentType:  contentType,
		CustomerName: doc.Holder.Name,
		MobileNumber: doc.Holder.MobileNumber,
		TotalRecords: l.Len(),
	}

	if p.committer != nil {
		// the ledger is already durable; a failed commit only loses history
		hash, cerr := p.committer.Commit(
			fmt.Sprintf("ingest: %s (%d transactions)", up.Filename, l.Len()),
			ledger.Dir,
		)
		if cerr != nil {
			log.Warn().Err(cerr).Str("ledger_id", entry.LedgerID).Msg("commit failed")
		} else {
			res.Commit = hash
		}
	}

	res.Data = analytics.Rows(derive.Enrich(l), p.previewLimit)
	res.ReturnedRecords = len(res.Data)
	log.Info().Str("ledger_id", entry.LedgerID).Int("records", res.TotalRecords).Msg("statement ingested")
	return res, nil
}

// timed runs one stage, logging and observing its duration. A cancelled
// context stops the pipeline before the stage starts.
func (p *Pipeline) timed(ctx context.Context, log zerolog.Logger, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stageLog := logger.Stage(log, name)
	start := time.Now()
	err := fn(logger.WithContext(ctx, stageLog))
	elapsed := time.Since(start)
	p.metrics.Duration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		return err
	}
	stageLog.Debug().Dur("elapsed", elapsed).Msg("stage complete")
	return nil
}

func (p *Pipeline) recordStats(log zerolog.Logger, s *normalize.Stats) {
	p.metrics.Dropped.WithLabelValues("incomplete").Add(float64(s.InputRows - s.CompletedRows))
	p.metrics.Dropped.WithLabelValues("invalid_date").Add(float64(s.InvalidDates))
	p.metrics.Dropped.WithLabelValues("duplicate").Add(float64(s.Duplicates))
	stageLog := logger.Stage(log, "normalize")
	stageLog.Debug().
		Int("input_rows", s.InputRows).
		Int("completed_rows", s.CompletedRows).
		Int("invalid_dates", s.InvalidDates).
		Int("duplicates", s.Duplicates).
		Strs("dropped_columns", s.DroppedColumns).
		Strs("filled_columns", s.FilledColumns).
		Msg("normalized")
}
