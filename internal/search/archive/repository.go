package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slotmachine/reelsearch/internal/search/searchtypes"
)

// ErrRunNotFound is returned when a lookup by ID matches no archived run.
var ErrRunNotFound = errors.New("archive: run not found")

// Repository defines the search-run archive's data access surface.
type Repository interface {
	Save(ctx context.Context, label string, cfg searchtypes.GAConfig, result *SearchOutcome) (*Run, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	ListByLabel(ctx context.Context, label string) ([]*Run, error)
}

// SearchOutcome is the subset of a ga.Result the archive persists. Defined
// locally (rather than imported from package ga) to keep the archive
// package dependency-free of the GA engine.
type SearchOutcome struct {
	BestIndividual *searchtypes.Individual
	BestFitness    *searchtypes.FitnessBreakdown
	History        []float64
}

// GormRepository implements Repository using GORM, following the
// Create/GetByID shape of internal/infra/repository/reelstrip_gorm.go.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a Repository backed by db. Migrate must have
// been run already (see Migrate).
func NewGormRepository(db *gorm.DB) Repository {
	return &GormRepository{db: db}
}

// Migrate creates the search_runs table if it does not exist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Run{})
}

// Save serializes result into a Run row and inserts it.
func (r *GormRepository) Save(ctx context.Context, label string, cfg searchtypes.GAConfig, result *SearchOutcome) (*Run, error) {
	historyJSON, err := json.Marshal(result.History)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal history: %w", err)
	}
	histogramsJSON, err := json.Marshal(result.BestIndividual.Histograms)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal histograms: %w", err)
	}
	stripsJSON, err := json.Marshal(result.BestIndividual.Strips)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal strips: %w", err)
	}

	run := &Run{
		ID:               uuid.New(),
		Label:            label,
		PopSize:          cfg.PopSize,
		Generations:      cfg.Generations,
		BestFitnessTotal: result.BestFitness.Total,
		History:          historyJSON,
		BestHistograms:   histogramsJSON,
		BestStrips:       stripsJSON,
	}

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("archive: create run: %w", err)
	}
	return run, nil
}

// GetByID retrieves one archived run.
func (r *GormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("archive: get run by id: %w", err)
	}
	return &run, nil
}

// ListByLabel lists archived runs sharing a label, newest first.
func (r *GormRepository) ListByLabel(ctx context.Context, label string) ([]*Run, error) {
	var runs []*Run
	if err := r.db.WithContext(ctx).
		Where("label = ?", label).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("archive: list runs by label: %w", err)
	}
	return runs, nil
}
