package repos

import (
	"github.com/tauraamui/camarchive/pkg/database/dbconn"
	"github.com/tauraamui/camarchive/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type RunRepository struct {
	DB dbconn.GormWrapper
}

func (r *RunRepository) Create(entry *models.RunEntry) error {
	return r.DB.Create(entry).Error()
}

func (r *RunRepository) FindByRun(runID string) ([]models.RunEntry, error) {
	entries := []models.RunEntry{}
	if err := r.DB.Where("run_id = ?", runID).Order("camera_id").Find(&entries).Error(); err != nil {
		return nil, xerror.Errorf("entries for run %s not found: %w", runID, err)
	}

	return entries, nil
}

func (r *RunRepository) FindByCamera(cameraID string) ([]models.RunEntry, error) {
	entries := []models.RunEntry{}
	if err := r.DB.Where("camera_id = ?", cameraID).Order("started_at").Find(&entries).Error(); err != nil {
		return nil, xerror.Errorf("entries for camera %s not found: %w", cameraID, err)
	}

	return entries, nil
}
