package components

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/artifact"
	"github.com/relloyd/country-metrics/logger"
)

type CleanupConfig struct {
	Log       logger.Logger
	Name      string
	Store     artifact.Store
	Locations []string // artifacts left by a previous run
}

// CleanupResult lists which locations were removed and which were already absent.
type CleanupResult struct {
	Deleted []string `json:"deleted"`
	Missing []string `json:"missing"`
}

// NewCleanup deletes each artifact location if present.
// Absent artifacts are logged and are not an error; any other delete failure is returned.
func NewCleanup(ctx context.Context, cfg *CleanupConfig) (CleanupResult, error) {
	result := CleanupResult{Deleted: make([]string, 0), Missing: make([]string, 0)}
	cfg.Log.Info(cfg.Name, " is running")
	for _, loc := range cfg.Locations {
		err := cfg.Store.Delete(ctx, loc)
		switch {
		case err == nil:
			cfg.Log.Info(cfg.Name, " deleted: ", loc)
			result.Deleted = append(result.Deleted, loc)
		case errors.Is(err, artifact.ErrArtifactNotFound):
			cfg.Log.Info(cfg.Name, " artifact not found, skipping: ", loc)
			result.Missing = append(result.Missing, loc)
		default:
			return result, errors.Wrapf(err, "%v unable to delete %v", cfg.Name, loc)
		}
	}
	cfg.Log.Info(cfg.Name, " complete")
	return result, nil
}
