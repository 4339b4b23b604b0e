package tasks

import (
	"fmt"

	"github.com/desertthunder/moviex/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadTopRated Phase = iota
	LoadStats
	LoadRecommendations
	LoadFavorites
	FetchMovie
	ExportMovie
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadTopRated:
		return "load_top_rated"
	case LoadStats:
		return "load_stats"
	case LoadRecommendations:
		return "load_recommendations"
	case LoadFavorites:
		return "load_favorites"
	case FetchMovie:
		return "fetch_movie"
	case ExportMovie:
		return "export_movie"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func sectionLoadedUpdate(phase Phase, step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loaded %s (%d)", step, total, sectionName(phase), count),
	}
}

func sectionFailedUpdate(phase Phase, step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, sectionName(phase), err),
	}
}

func fetchingMovieUpdate(step, total int, movieID int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMovie,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching movie %d...", step, total, movieID),
	}
}

func exportCompletedUpdate(step, total int, movie *models.Movie, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportMovie,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, movie.Title, filesCount),
		Data:    movie,
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportMovie,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}

func sectionName(p Phase) string {
	switch p {
	case LoadTopRated:
		return "top rated"
	case LoadStats:
		return "stats"
	case LoadRecommendations:
		return "recommendations"
	case LoadFavorites:
		return "favorites"
	default:
		return p.String()
	}
}
