// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/config"
	"github.com/smart-store/analytics-pipeline/pkg/connector"
	"github.com/smart-store/analytics-pipeline/pkg/csvio"
	"github.com/smart-store/analytics-pipeline/pkg/cube"
	"github.com/smart-store/analytics-pipeline/pkg/prep"
	"github.com/smart-store/analytics-pipeline/pkg/table"
	"github.com/smart-store/analytics-pipeline/pkg/warehouse"
)

// CubeFileName is the delimited file the default profitability cube is
// written to
const CubeFileName = "multidimensional_olap_cube.csv"

// Pipeline runs the batch stages: prepare raw files, load the warehouse,
// build the reporting cubes. Stages run sequentially; a stage failure
// stops the stages that depend on its output.
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a pipeline from validated configuration
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// Run executes the requested stages in order and returns the run summary.
// The summary is returned even on failure so callers can report partial
// progress.
func (p *Pipeline) Run(ctx context.Context, stages []Stage) (*Summary, error) {
	summary := NewSummary()
	logger := p.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("Starting pipeline run", zap.Any("stages", stages))

	var runErr error
	for _, stage := range stages {
		result := StageResult{Stage: stage, StartTime: time.Now()}

		var rows int64
		var err error
		switch stage {
		case StagePrepare:
			err = p.runPrepare(logger)
		case StageLoad:
			rows, err = p.runLoad(ctx, logger)
		case StageCube:
			rows, err = p.runCube(ctx, logger)
		default:
			err = fmt.Errorf("unknown stage: %s", stage)
		}

		result.Rows = rows
		result.Complete(err)
		summary.Add(result)

		if err != nil {
			logger.Error("Stage failed",
				zap.String("stage", string(stage)),
				zap.Duration("duration", result.Duration),
				zap.Error(err))
			runErr = fmt.Errorf("stage %s failed: %w", stage, err)
			break
		}
		logger.Info("Stage complete",
			zap.String("stage", string(stage)),
			zap.Int64("rows", rows),
			zap.Duration("duration", result.Duration))
	}

	summary.Complete()
	logger.Info("Pipeline run finished",
		zap.Bool("failed", summary.Failed()),
		zap.Duration("duration", summary.Duration))
	return summary, runErr
}

func (p *Pipeline) runPrepare(logger *zap.Logger) error {
	preparer, err := prep.NewPreparer(p.cfg.RawDataDir, p.cfg.PreparedDataDir, logger.Named("prep"))
	if err != nil {
		return err
	}
	return preparer.PrepareAll()
}

func (p *Pipeline) runLoad(ctx context.Context, logger *zap.Logger) (int64, error) {
	store, closeStore, err := p.openStore(ctx, logger)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	if err := store.CreateSchema(ctx); err != nil {
		return 0, err
	}

	datasets := make([]*table.Table, len(prep.Entities))
	for i, entity := range prep.Entities {
		t, err := csvio.ReadTable(filepath.Join(p.cfg.PreparedDataDir, entity.Prepared), logger)
		if err != nil {
			return 0, fmt.Errorf("failed to read prepared %s: %w", entity.Name, err)
		}
		datasets[i] = t
	}

	stats, err := store.Load(ctx, datasets[0], datasets[1], datasets[2])
	if err != nil {
		return 0, err
	}
	return stats.Customers + stats.Products + stats.Sales, nil
}

func (p *Pipeline) runCube(ctx context.Context, logger *zap.Logger) (int64, error) {
	store, closeStore, err := p.openStore(ctx, logger)
	if err != nil {
		return 0, err
	}
	defer closeStore()

	mart, err := store.SalesMart(ctx)
	if err != nil {
		return 0, err
	}

	// Category-by-region profitability cube
	dims := []string{"region", "category"}
	metrics := []cube.Metric{
		{Column: "sale_amount", Funcs: []cube.Aggregate{cube.AggSum, cube.AggMean}},
		{Column: "sale_id", Funcs: []cube.Aggregate{cube.AggCount}},
	}

	olap, err := cube.Build(mart, dims, metrics, logger.Named("cube"))
	if err != nil {
		return 0, err
	}

	out := filepath.Join(p.cfg.CubeOutputDir, CubeFileName)
	if err := csvio.WriteTable(out, olap, logger); err != nil {
		return 0, err
	}
	return int64(olap.NumRows()), nil
}

// openStore opens the configured warehouse connection for one stage
func (p *Pipeline) openStore(ctx context.Context, logger *zap.Logger) (*warehouse.Store, func(), error) {
	conn, err := connector.NewWarehouseConnector(ctx, p.cfg.Warehouse, logger.Named("connector"))
	if err != nil {
		return nil, nil, err
	}

	store, err := warehouse.NewStore(conn, logger.Named("warehouse"))
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	closeStore := func() {
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close warehouse connection", zap.Error(err))
		}
	}
	return store, closeStore, nil
}
