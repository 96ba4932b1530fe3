// package tasks implements long-running board operations, currently the bulk post export.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/repositories"
	"github.com/desertthunder/bbx/internal/shared"
)

// PostSource is the part of the API client the export reads from.
type PostSource interface {
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, id int) (*models.Post, error)
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
}

// RunRecorder keeps export history. [repositories.ExportRunRepository] implements it.
type RunRecorder interface {
	Start(ctx context.Context, run *repositories.ExportRun) error
	Finish(ctx context.Context, id string, succeeded, failed int) error
}

// ExportEngine fetches posts with their comments and writes them to disk.
type ExportEngine struct {
	posts  PostSource
	runs   RunRecorder
	logger *log.Logger
}

// NewExportEngine creates an engine. runs and logger may be nil.
func NewExportEngine(posts PostSource, runs RunRecorder, logger *log.Logger) *ExportEngine {
	return &ExportEngine{posts: posts, runs: runs, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ResolveIDs returns ids unchanged, or every post id matching filter when ids is empty.
func (e *ExportEngine) ResolveIDs(ctx context.Context, progress chan<- ProgressUpdate, ids []int, filter models.PostFilter) ([]int, error) {
	if len(ids) > 0 {
		return ids, nil
	}
	if e.posts == nil {
		return nil, fmt.Errorf("%w: post source not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, listPostsUpdate(filter))
	posts, err := e.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	out := make([]int, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out, nil
}

// Fetch loads one post and its comments.
func (e *ExportEngine) Fetch(ctx context.Context, id int) (*models.PostExport, error) {
	if e.posts == nil {
		return nil, fmt.Errorf("%w: post source not initialized", shared.ErrServiceUnavailable)
	}

	post, err := e.posts.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post %d: %w", id, err)
	}

	comments, err := e.posts.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments for post %d: %w", id, err)
	}

	return &models.PostExport{Post: *post, Comments: comments}, nil
}

func (e *ExportEngine) warn(msg string, kv ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, kv...)
	}
}
