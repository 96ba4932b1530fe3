package pages

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/microcosm-cc/bluemonday"
)

const (
	previewLength = 100
	markdownStyle = "dark"
)

var (
	strict = bluemonday.StrictPolicy()

	mdRendererMu sync.Mutex
	// Renderers are cached by wrap width; building one per render is slow.
	mdRenderers = map[int]*glamour.TermRenderer{}

	badgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

// PlainText strips markup from user content so it cannot inject anything into the terminal.
func PlainText(s string) string {
	clean := html.UnescapeString(strict.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, clean)
}

// Markdown renders sanitized content as terminal markdown, falling back to plain text.
func Markdown(content string, width int) string {
	md := strings.TrimSpace(PlainText(content))
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	mdRendererMu.Lock()
	r := mdRenderers[width]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(markdownStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[width]; existing != nil {
			r = existing
		} else {
			mdRenderers[width] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// CategoryLabel prefers the embedded category, then a lookup table, then the fallback label.
func CategoryLabel(p models.Post, categories map[int]models.Category) string {
	if p.Category != nil {
		return p.Category.Name()
	}
	if c, ok := categories[p.CategoryID]; ok {
		return c.Name()
	}
	return (*models.Category)(nil).Name()
}

// RenderPostCard renders one post as a list entry with a content preview.
func RenderPostCard(p models.Post, categories map[int]models.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n",
		mutedStyle.Render("#"+strconv.Itoa(p.ID)),
		badgeStyle.Render("["+CategoryLabel(p, categories)+"]"),
		boldStyle.Render(PlainText(p.Title)))

	preview := strings.Join(strings.Fields(PlainText(p.Content)), " ")
	if preview != "" {
		fmt.Fprintf(&b, "    %s\n", shared.Truncate(preview, previewLength))
	}

	fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(fmt.Sprintf("%s · %s · %d views",
		PlainText(p.AuthorName()), shared.FormatTime(p.CreatedAt), p.ViewCount)))
	return b.String()
}

// RenderPosts renders a post list or the empty-state message.
func RenderPosts(posts []models.Post, categories map[int]models.Category) string {
	if len(posts) == 0 {
		return mutedStyle.Render(EmptyPostsMessage) + "\n"
	}

	cards := make([]string, len(posts))
	for i, p := range posts {
		cards[i] = RenderPostCard(p, categories)
	}
	return strings.Join(cards, "\n")
}

// RenderPost renders the post header and its body as markdown.
func RenderPost(p *models.Post, categories map[int]models.Category, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", badgeStyle.Render("["+CategoryLabel(*p, categories)+"]"), boldStyle.Render(PlainText(p.Title)))
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(fmt.Sprintf("by %s · %s · %d views",
		PlainText(p.AuthorName()), shared.FormatTime(p.CreatedAt), p.ViewCount)))
	b.WriteString(Markdown(p.Content, width))
	b.WriteString("\n")
	return b.String()
}

// RenderComments renders a comment list or the empty-state message. Comments the viewer may
// delete are marked.
func RenderComments(comments []models.Comment, viewerID int) string {
	if len(comments) == 0 {
		return mutedStyle.Render(EmptyCommentsMessage) + "\n"
	}

	var b strings.Builder
	for _, c := range comments {
		mine := ""
		if CanModifyComment(viewerID, c) {
			mine = " " + badgeStyle.Render("(yours)")
		}
		fmt.Fprintf(&b, "%s %s%s\n  %s\n",
			mutedStyle.Render("#"+strconv.Itoa(c.ID)),
			boldStyle.Render(PlainText(c.User.DisplayName())),
			mine,
			PlainText(c.Content))
	}
	return b.String()
}

// RenderError renders a view's error line.
func RenderError(err error) string {
	if err == nil {
		return ""
	}
	return errStyle.Render("Error: "+err.Error()) + "\n"
}

// CategoryIndex keys categories by id.
func CategoryIndex(categories []models.Category) map[int]models.Category {
	idx := make(map[int]models.Category, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}
