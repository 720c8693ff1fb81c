// Package runstore persists benchmark run records so throughput can be
// compared across schedules, cutoffs and machines.
package runstore

import (
	"time"
)

// RunRecord is one completed benchmark run.
type RunRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Stencil      string `gorm:"index"`
	Rank         int
	Dims         string // e.g. "512x512"
	Timesteps    int
	Mode         string `gorm:"index"` // run, serial or plan
	Workers      int
	DurationMS   int64
	PointsPerSec float64
	CreatedAt    time.Time
}

// TableName keeps the table name stable across gorm versions.
func (RunRecord) TableName() string { return "run_records" }

// Modes recorded in RunRecord.Mode.
const (
	ModeParallel = "run"
	ModeSerial   = "serial"
	ModePlan     = "plan"
)
