// package formatter writes posts and their comments to export formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the accepted --format values.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// BaseName is the file stem used for a post's export files.
func BaseName(postID int) string {
	return fmt.Sprintf("post_%d", postID)
}

// ExportToCSV writes the comments of a post with columns: ID, Author, AuthorID, Content, CreatedAt
func ExportToCSV(export *models.PostExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Author", "AuthorID", "Content", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range export.Comments {
		record := []string{
			strconv.Itoa(c.ID),
			c.User.DisplayName(),
			strconv.Itoa(c.AuthorUserID),
			c.Content,
			formatTimestamp(c.CreatedAt),
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

// ExportToMarkdown renders a post and its comments as Markdown with an optional author avatar
func ExportToMarkdown(export *models.PostExport, avatarFilename string) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Post

	fmt.Fprintf(&buf, "# %s\n\n", p.Title)

	if avatarFilename != "" {
		fmt.Fprintf(&buf, "![Author](%s)\n\n", avatarFilename)
	}

	fmt.Fprintf(&buf, "**Category**: %s\n", categoryName(p))
	fmt.Fprintf(&buf, "**Author**: %s\n", p.AuthorName())
	if date := shared.FormatDate(p.CreatedAt); date != "" {
		fmt.Fprintf(&buf, "**Posted**: %s\n", date)
	}
	fmt.Fprintf(&buf, "**Views**: %d\n\n", p.ViewCount)

	buf.WriteString(p.Content)
	buf.WriteString("\n\n")

	fmt.Fprintf(&buf, "## Comments (%d)\n\n", len(export.Comments))
	for i, c := range export.Comments {
		fmt.Fprintf(&buf, "%d. **%s**: %s\n", i+1, c.User.DisplayName(), c.Content)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a post and its comments to plain text
func ExportToText(export *models.PostExport) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Post

	fmt.Fprintf(&buf, "Post: %s\n", p.Title)
	fmt.Fprintf(&buf, "Category: %s\n", categoryName(p))
	fmt.Fprintf(&buf, "Author: %s\n", p.AuthorName())
	fmt.Fprintf(&buf, "Comments: %d\n\n", len(export.Comments))
	buf.WriteString(p.Content)
	buf.WriteString("\n\n")

	for i, c := range export.Comments {
		fmt.Fprintf(&buf, "%d. %s: %s\n", i+1, c.User.DisplayName(), c.Content)
	}

	return buf.Bytes(), nil
}

// DownloadImage fetches an image and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of the post (without comments)
func ToMetadataJSON(post models.Post) ([]byte, error) {
	return shared.MarshalJSON(post, true)
}

// WriteJSONExport writes the post and its comments to {base}.json.
func WriteJSONExport(export *models.PostExport, base string) (string, error) {
	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	path := base + ".json"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	CommentsFile string
	MetadataFile string
}

// WriteCSVExport writes the comments as CSV with an accompanying post metadata JSON file.
//
// Creates {base}_comments.csv and {base}_post.json
func WriteCSVExport(export *models.PostExport, base string) (*CSVExportResult, error) {
	if base == "" {
		base = BaseName(export.Post.ID)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	commentsFile := base + "_comments.csv"
	if err := os.WriteFile(commentsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Post)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_post.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		CommentsFile: commentsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Avatar    string
}

// WriteMarkdownExport writes a post to {dir}/README.md.
//
// When avatar is non-nil it is saved as {dir}/avatar.jpg and linked from the page.
func WriteMarkdownExport(export *models.PostExport, outputDir string, avatar []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = BaseName(export.Post.ID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir}

	var avatarFilename string
	if len(avatar) > 0 {
		avatarPath := filepath.Join(outputDir, "avatar.jpg")
		if err := os.WriteFile(avatarPath, avatar, 0644); err != nil {
			return nil, fmt.Errorf("failed to save avatar: %w", err)
		}
		avatarFilename = "avatar.jpg"
		result.Avatar = avatarPath
		result.Files = append(result.Files, avatarPath)
	}

	mdData, err := ExportToMarkdown(export, avatarFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes a post to plain text, defaulting to post_{id}.txt.
func WriteTextExport(export *models.PostExport, path string) (string, error) {
	if path == "" {
		path = BaseName(export.Post.ID) + ".txt"
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

func categoryName(p models.Post) string {
	if p.Category != nil {
		return p.Category.Name()
	}
	return (*models.Category)(nil).Name()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
