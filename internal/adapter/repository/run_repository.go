package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// RunRepository persists pipeline run audit records
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record upserts the run snapshot. The pipeline calls this once per
// stage transition with the same run id, so conflicts update in place.
func (r *RunRepository) Record(ctx context.Context, run *entities.PipelineRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(run).Error
}

// ListByMeetingID returns all runs for a meeting, newest first.
func (r *RunRepository) ListByMeetingID(ctx context.Context, meetingID string) ([]entities.PipelineRun, error) {
	var runs []entities.PipelineRun
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("started_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestByMeetingID returns the most recent run for a meeting, or nil
// when the meeting has never been processed.
func (r *RunRepository) LatestByMeetingID(ctx context.Context, meetingID string) (*entities.PipelineRun, error) {
	var run entities.PipelineRun
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("started_at DESC").
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
