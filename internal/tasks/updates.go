package tasks

import (
	"fmt"

	"github.com/desertthunder/bbx/internal/models"
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
	ListPosts Phase = iota
	FetchPosts
	ExportPosts
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ListPosts:
		return "list_posts"
	case FetchPosts:
		return "fetch_posts"
	case ExportPosts:
		return "export_posts"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func listPostsUpdate(filter models.PostFilter) ProgressUpdate {
	msg := "Listing posts..."
	if filter.Keyword != "" {
		msg = fmt.Sprintf("Listing posts matching %q...", filter.Keyword)
	}
	return ProgressUpdate{Phase: ListPosts, Step: 1, Total: 1, Message: msg}
}

func fetchingPostsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPosts,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d posts...", total),
	}
}

func exportingPostUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPosts,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPosts,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPosts,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Writing manifest " + path,
		Data:    path,
	}
}
