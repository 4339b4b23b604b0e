package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/moviex/internal/shared"
)

// ManifestEntry describes one exported movie.
type ManifestEntry struct {
	MovieID int64    `json:"movie_id"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Manifest summarises a bulk export.
type Manifest struct {
	Format            Format          `json:"format"`
	CreatedAt         time.Time       `json:"created_at"`
	TotalMovies       int             `json:"total_movies"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Entries           []ManifestEntry `json:"entries"`
}

// NewManifestEntry builds an entry; a nil err marks it successful.
func NewManifestEntry(movieID int64, title string, files []string, err error) ManifestEntry {
	entry := ManifestEntry{MovieID: movieID, Title: title, Status: "success", Files: files}
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
		entry.Files = nil
	}
	return entry
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
