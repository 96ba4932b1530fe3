package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/desertthunder/bbx/internal/shared"
)

var (
	_ list.Item = postItem{}
)

// postItem wraps [models.Post] to implement [list.Item].
type postItem struct {
	post     models.Post
	category string
}

func newPostItems(posts []models.Post, categories map[int]models.Category) []list.Item {
	items := make([]list.Item, len(posts))
	for i, p := range posts {
		items[i] = postItem{post: p, category: pages.CategoryLabel(p, categories)}
	}
	return items
}

func (i postItem) FilterValue() string { return i.post.Title }
func (i postItem) Title() string {
	return fmt.Sprintf("[%s] %s", i.category, pages.PlainText(i.post.Title))
}
func (i postItem) Description() string {
	desc := fmt.Sprintf("%s • %d views", pages.PlainText(i.post.AuthorName()), i.post.ViewCount)
	if date := shared.FormatDate(i.post.CreatedAt); date != "" {
		desc = fmt.Sprintf("%s • %s", desc, date)
	}
	return desc
}
