package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/bbx/internal/shared"
)

// ExportResult is the outcome of exporting one post.
type ExportResult struct {
	PostID  int
	Title   string
	Success bool
	Files   []string
	Error   error
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	RunID             string
	TotalPosts        int
	SuccessfulExports int
	FailedExports     int
	Results           []ExportResult
	OutputDirectory   string
	ManifestPath      string
}

// ExportManifest is the export_manifest.json written next to the exported files.
type ExportManifest struct {
	RunID             string          `json:"run_id,omitempty"`
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalPosts        int             `json:"total_posts"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	OutputDirectory   string          `json:"output_directory"`
	Posts             []ManifestEntry `json:"posts"`
}

// ManifestEntry describes one post in the manifest.
type ManifestEntry struct {
	PostID int      `json:"post_id"`
	Title  string   `json:"title"`
	Status string   `json:"status"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// NewManifest builds the manifest for result.
func NewManifest(result *BulkExportResult, format string) ExportManifest {
	m := ExportManifest{
		RunID:             result.RunID,
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalPosts:        result.TotalPosts,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		OutputDirectory:   result.OutputDirectory,
		Posts:             make([]ManifestEntry, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		entry := ManifestEntry{PostID: r.PostID, Title: r.Title, Status: "success", Files: r.Files}
		if !r.Success {
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Posts = append(m.Posts, entry)
	}
	return m
}

// WriteBulkExportManifest writes the manifest for result to path.
func WriteBulkExportManifest(result *BulkExportResult, format, path string) error {
	data, err := shared.MarshalJSON(NewManifest(result, format), true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
