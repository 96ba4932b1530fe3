package tasks

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/bbx/internal/formatter"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/repositories"
	"github.com/desertthunder/bbx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk post exports.
type BulkExportOpts struct {
	Format     string            // Export format: json, csv, markdown, txt
	OutputDir  string            // Base output directory (default: bbx_export_{epoch})
	NumWorkers int               // Concurrent writers (default: 5, max 10)
	RateLimit  float64           // Post fetches per second (default: 5)
	Filter     models.PostFilter // Selects posts when no ids are given
	// FetchAvatar, when set, downloads the author's profile image for markdown exports.
	FetchAvatar func(ctx context.Context, url string) ([]byte, error)
}

type exportJob struct {
	postID int
	export *models.PostExport
}

// BulkExport exports posts with their comments concurrently with rate limiting and progress tracking.
//
// Fetches are paced by a limiter and handed to a worker pool that writes files. Failed posts are
// recorded and do not stop the run. A manifest summarizing every result is written last, and
// the run is recorded in the export history when a [RunRecorder] is configured.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if e.posts == nil {
		return nil, fmt.Errorf("%w: post source not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !slices.Contains(formatter.Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("bbx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	ids, err := e.ResolveIDs(ctx, prog, ids, opts.Filter)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &formatter.BulkExportResult{
		RunID:           shared.GenerateID(),
		TotalPosts:      len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.ExportResult, 0, len(ids)),
	}
	e.startRun(ctx, result, opts)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(ids))
	results := make(chan formatter.ExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, fetchingPostsUpdate(len(ids)))
		for i, id := range ids {
			if ctx.Err() != nil {
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.Fetch(ctx, id)
			if err != nil {
				results <- formatter.ExportResult{
					PostID: id,
					Title:  fmt.Sprintf("Unknown (%d)", id),
					Error:  err,
				}
				continue
			}

			jobs <- exportJob{postID: id, export: export}
			e.sendProgress(prog, exportingPostUpdate(i+1, len(ids), export.Post.Title))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.Title, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b formatter.ExportResult) int {
		return cmp.Compare(a.PostID, b.PostID)
	})
	e.finishRun(result)

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes posts from the jobs channel until it closes or ctx ends.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- formatter.ExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSinglePost(ctx, job, opts)
	}
}

// exportSinglePost writes one post in the requested format.
func (e *ExportEngine) exportSinglePost(ctx context.Context, j exportJob, opts BulkExportOpts) formatter.ExportResult {
	result := formatter.ExportResult{
		PostID: j.postID,
		Title:  j.export.Post.Title,
	}
	base := filepath.Join(opts.OutputDir, formatter.BaseName(j.postID))

	switch opts.Format {
	case formatter.FormatCSV:
		csvRes, err := formatter.WriteCSVExport(j.export, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.CommentsFile, csvRes.MetadataFile}

	case formatter.FormatMarkdown:
		var avatar []byte
		if u := j.export.Post.User; opts.FetchAvatar != nil && u != nil && u.ProfileImageURL != "" {
			data, err := opts.FetchAvatar(ctx, u.ProfileImageURL)
			if err != nil {
				e.warn("skipping avatar", "post_id", j.postID, "error", err)
			} else {
				avatar = data
			}
		}

		mdRes, err := formatter.WriteMarkdownExport(j.export, base, avatar)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	case formatter.FormatText:
		path, err := formatter.WriteTextExport(j.export, base+".txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		path, err := formatter.WriteJSONExport(j.export, base)
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

func (e *ExportEngine) startRun(ctx context.Context, result *formatter.BulkExportResult, opts BulkExportOpts) {
	if e.runs == nil {
		return
	}
	run := &repositories.ExportRun{
		ID:        result.RunID,
		Format:    opts.Format,
		OutputDir: opts.OutputDir,
		Total:     result.TotalPosts,
	}
	if err := e.runs.Start(ctx, run); err != nil {
		e.warn("failed to record export run", "run_id", run.ID, "error", err)
	}
}

// finishRun records the outcome even when the export's context was cancelled.
func (e *ExportEngine) finishRun(result *formatter.BulkExportResult) {
	if e.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.runs.Finish(ctx, result.RunID, result.SuccessfulExports, result.FailedExports); err != nil {
		e.warn("failed to finish export run", "run_id", result.RunID, "error", err)
	}
}
