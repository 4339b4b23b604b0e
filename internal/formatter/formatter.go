// package formatter provides functions to export movie lists to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat maps a user supplied name to a [Format]. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, csv, markdown or txt)", shared.ErrInvalidArgument, s)
	}
}

// MovieLine renders a movie on one line: "Title (Year) · Genre|Genre · 4.21 (1,203 ratings)".
func MovieLine(m models.Movie) string {
	var b strings.Builder
	b.WriteString(m.Title)
	if y := m.YearString(); y != "" {
		fmt.Fprintf(&b, " (%s)", y)
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, " · %s", strings.Join(m.GenreNames(), "|"))
	}
	fmt.Fprintf(&b, " · %s", shared.FormatRating(m.AverageRating, m.RatingCount))
	return b.String()
}

// ExportToCSV converts a MovieExport to CSV format with columns: ID, MovieID, Title, Year, Genres, AverageRating, RatingCount, IMDbID, TMDbID
func ExportToCSV(export *models.MovieExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "MovieID", "Title", "Year", "Genres", "AverageRating", "RatingCount", "IMDbID", "TMDbID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range export.Movies {
		record := []string{
			strconv.FormatInt(movie.ID, 10),
			strconv.FormatInt(movie.MovieID, 10),
			movie.Title,
			movie.YearString(),
			strings.Join(movie.GenreNames(), "|"),
			strconv.FormatFloat(movie.AverageRating, 'f', 2, 64),
			strconv.Itoa(movie.RatingCount),
			movie.IMDBID,
			movie.TMDBID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a MovieExport to Markdown format. Titles link to IMDb when the id is known.
func ExportToMarkdown(export *models.MovieExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Name))

	if export.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", export.Description))
	}

	buf.WriteString(fmt.Sprintf("**Movies**: %d\n", len(export.Movies)))
	if !export.ExportedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339)))
	}
	buf.WriteString("\n## Movies\n\n")

	for i, movie := range export.Movies {
		title := movie.Title
		if y := movie.YearString(); y != "" {
			title = fmt.Sprintf("%s (%s)", title, y)
		}
		if u := shared.IMDbURL(movie.IMDBID); u != "" {
			title = fmt.Sprintf("[%s](%s)", title, u)
		}
		genresPart := ""
		if len(movie.Genres) > 0 {
			genresPart = fmt.Sprintf(" - _%s_", strings.Join(movie.GenreNames(), ", "))
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s]\n", i+1, title, genresPart, shared.FormatRating(movie.AverageRating, movie.RatingCount)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a MovieExport to plain text format
func ExportToText(export *models.MovieExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("List: %s\n", export.Name))
	if export.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", export.Description))
	}
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(export.Movies)))

	for i, movie := range export.Movies {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, MovieLine(movie)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a MovieExport to indented JSON.
func ExportToJSON(export *models.MovieExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// metadata is the list description written next to CSV exports.
type metadata struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
	MovieCount  int       `json:"movie_count"`
}

// ToMetadataJSON generates a JSON representation of export metadata (without movies)
func ToMetadataJSON(export *models.MovieExport) ([]byte, error) {
	return shared.MarshalJSON(metadata{
		Name:        export.Name,
		Description: export.Description,
		ExportedAt:  export.ExportedAt,
		MovieCount:  len(export.Movies),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport exports a movie list to CSV format with accompanying metadata JSON file.
//
// Defaults to the slugged list name as the base filename & creates {base}_movies.csv and {base}_metadata.json
func WriteCSVExport(export *models.MovieExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(export.Name)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a movie list to {dir}/README.md.
//
// Directory name defaults to the slugged list name.
func WriteMarkdownExport(export *models.MovieExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = Slug(export.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteTextExport exports a movie list to plain text format.
//
// Defaults to {slug}_movies.txt as the filename.
func WriteTextExport(export *models.MovieExport, path string) (string, error) {
	if path == "" {
		path = Slug(export.Name) + "_movies.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport exports a movie list as indented JSON.
//
// Defaults to {slug}.json as the filename.
func WriteJSONExport(export *models.MovieExport, path string) (string, error) {
	if path == "" {
		path = Slug(export.Name) + ".json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// Write exports in the given format under dir, naming files after base, and returns the files written.
func Write(export *models.MovieExport, format Format, dir, base string) ([]string, error) {
	if base == "" {
		base = Slug(export.Name)
	}
	target := filepath.Join(dir, base)

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, target)
		if err != nil {
			return nil, err
		}
		return []string{res.MoviesFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(export, target)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(export, target+"_movies.txt")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		file, err := WriteJSONExport(export, target+".json")
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	}
}

// Slug lower-cases s and replaces runs of anything but letters and digits with "_".
func Slug(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	if b.Len() == 0 {
		return "movies"
	}
	return b.String()
}
