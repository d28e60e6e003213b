package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pesalens/pesalens/internal/classify"
	"github.com/pesalens/pesalens/internal/config"
	"github.com/pesalens/pesalens/internal/gitops"
	"github.com/pesalens/pesalens/internal/ingest"
	"github.com/pesalens/pesalens/internal/instrument"
	"github.com/pesalens/pesalens/internal/ledger"
	"github.com/pesalens/pesalens/internal/logger"
	"github.com/pesalens/pesalens/internal/queries"
	"github.com/pesalens/pesalens/internal/statement"
)

// workspace is an opened pesalens directory with its configuration.
type workspace struct {
	dir   string
	cfg   *config.Config
	log   zerolog.Logger
	store *ledger.Store
}

// openWorkspace loads pesalens.yaml from dir. A directory without one runs
// on defaults plus environment overrides.
func openWorkspace(dir string, logOut io.Writer) (*workspace, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
		err = cfg.Validate()
	}
	if err != nil {
		return nil, err
	}

	return &workspace{
		dir:   absDir,
		cfg:   cfg,
		log:   logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Out: logOut}),
		store: ledger.NewStore(absDir),
	}, nil
}

func (w *workspace) rules() ([]classify.Rule, error) {
	return classify.LoadRules(filepath.Join(w.dir, w.cfg.Ingest.RulesFile))
}

func (w *workspace) pipeline(metrics *instrument.Metrics) (*ingest.Pipeline, error) {
	rules, err := w.rules()
	if err != nil {
		return nil, err
	}
	opts := []ingest.Option{
		ingest.WithMetrics(metrics),
		ingest.WithPreviewLimit(w.cfg.Ingest.PreviewLimit),
	}
	if w.cfg.Git.AutoCommit && gitops.IsRepo(w.dir) {
		opts = append(opts, ingest.WithCommitter(gitops.Repo{
			Dir:         w.dir,
			AuthorName:  w.cfg.Git.AuthorName,
			AuthorEmail: w.cfg.Git.AuthorEmail,
		}))
	}
	return ingest.NewPipeline(statement.DefaultRegistry(nil), classify.New(rules), w.store, opts...), nil
}

func (w *workspace) queryService(metrics *instrument.Metrics) *queries.Service {
	return queries.NewService(w.store, queries.DefaultRegistry(w.cfg.Bundles), metrics)
}
