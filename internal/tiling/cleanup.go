package tiling

import "log/slog"

// Deleter removes a persisted tile. Deleting a missing tile is not an error.
type Deleter interface {
	Delete(path string) (bool, error)
}

// CleanupReport tallies the outcome of a Cleanup call.
type CleanupReport struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Cleanup deletes every path through d. Failures are logged and counted,
// never returned; files that no longer exist count as neither.
func Cleanup(d Deleter, paths []string, logger *slog.Logger) CleanupReport {
	if logger == nil {
		logger = slog.Default()
	}
	var rep CleanupReport
	for _, p := range paths {
		deleted, err := d.Delete(p)
		if err != nil {
			rep.Failed++
			logger.Warn("failed to clean up tile", "path", p, "error", err)
			continue
		}
		if deleted {
			rep.Deleted++
			logger.Debug("cleaned up tile", "path", p)
		}
	}
	if rep.Deleted > 0 {
		logger.Debug("cleaned up tile files", "count", rep.Deleted)
	}
	if rep.Failed > 0 {
		logger.Warn("failed to clean up tile files", "count", rep.Failed)
	}
	return rep
}
