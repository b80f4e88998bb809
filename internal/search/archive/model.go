// Package archive persists completed genetic search runs (not intermediate
// populations — see spec.md §1's Non-goals) so an operator can review or
// diff past runs. Adapted from domain/reelstrip/model.go's GORM shape:
// the JSONB-serializer field idiom is kept, the reel-strip-assignment
// domain is replaced with the search run's best individual and history.
package archive

import (
	"time"

	"github.com/google/uuid"
)

// Run is one completed runGeneticSearch call, persisted for later review.
type Run struct {
	ID        uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	Label     string    `gorm:"type:varchar(255);index" json:"label"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	PopSize     int `gorm:"not null" json:"pop_size"`
	Generations int `gorm:"not null" json:"generations"`

	BestFitnessTotal float64 `gorm:"not null" json:"best_fitness_total"`
	History          []byte  `gorm:"type:blob" json:"-"`
	HistoryJSON      string  `gorm:"-" json:"history,omitempty"`

	BestHistograms []byte `gorm:"type:blob" json:"-"`
	BestStrips     []byte `gorm:"type:blob" json:"-"`
}

// TableName specifies the table name for GORM.
func (Run) TableName() string {
	return "search_runs"
}
