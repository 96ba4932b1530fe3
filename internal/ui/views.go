package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/desertthunder/bbx/internal/shared"
)

// View renders the current view inside the shell frame.
func (m *Model) View() string {
	var title, body string

	switch m.view {
	case HomeView:
		title, body = "Home", m.renderList(m.home)
	case ListView:
		title, body = "Posts", m.renderList(m.posts)
	case DetailView:
		title, body = "Post", m.renderDetail()
	case FormView:
		title, body = m.form.Title(), m.renderForm()
	case ConfirmView:
		title, body = "Confirm", m.renderConfirm()
	case LoginRequiredView:
		title, body = "Sign in", m.renderLoginRequired()
	}

	var b strings.Builder
	b.WriteString(m.shell.Frame(title, body))
	if m.err != nil {
		b.WriteString("\n" + styles.err.Render("Error: "+m.err.Error()))
	} else if m.status != "" {
		b.WriteString("\n" + styles.ok.Render(m.status))
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) contentWidth() int {
	return max(m.width-4, 40)
}

func (m *Model) renderList(l *pages.PostList) string {
	var b strings.Builder

	if m.view == ListView {
		b.WriteString(m.search.View() + "\n")
		b.WriteString(styles.help.Render("Category: "+m.categoryName()) + "\n\n")
	}

	b.WriteString(pages.RenderError(l.Err()))
	switch {
	case l.Loading() && len(l.Posts()) == 0:
		b.WriteString("Loading...")
	case len(l.Posts()) == 0:
		b.WriteString(styles.help.Render(pages.EmptyPostsMessage))
	default:
		b.WriteString(m.postList.View())
	}
	return b.String()
}

func (m *Model) renderDetail() string {
	d := m.detail
	post := d.Post()
	if post == nil {
		return d.Render(m.contentWidth())
	}

	var b strings.Builder
	b.WriteString(pages.RenderError(d.Err()))
	b.WriteString(pages.RenderPost(post, pages.CategoryIndex(m.categories), m.contentWidth()))

	comments := d.Comments()
	b.WriteString("\n" + styles.title.Render(fmt.Sprintf("Comments (%d)", len(comments))) + "\n")
	if len(comments) == 0 {
		b.WriteString(styles.help.Render(pages.EmptyCommentsMessage) + "\n")
	}
	for i, c := range comments {
		line := fmt.Sprintf("%s: %s", pages.PlainText(c.User.DisplayName()), pages.PlainText(c.Content))
		if date := shared.FormatTime(c.CreatedAt); date != "" {
			line += styles.help.Render("  " + date)
		}
		if d.CanDeleteComment(c) {
			line += styles.warn.Render("  (yours)")
		}
		if i == m.commentCursor {
			b.WriteString(styles.selected.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	switch {
	case m.commenting:
		b.WriteString("\n" + m.comment.View() + "\n")
	case !d.CanComment():
		b.WriteString("\n" + styles.help.Render(pages.LoginToCommentNotice) + "\n")
	}
	return b.String()
}

func (m *Model) renderForm() string {
	if !m.form.Loaded() {
		return "Loading..."
	}

	category := "(none)"
	if m.formCategory < len(m.categories) {
		c := m.categories[m.formCategory]
		category = c.Name()
	}
	category = fmt.Sprintf("Category: < %s >", category)
	if m.focus == fieldCategory {
		category = styles.selected.Render(category)
	}

	return strings.Join([]string{
		m.titleInput.View(),
		"",
		m.contentInput.View(),
		"",
		category,
	}, "\n")
}

func (m *Model) renderConfirm() string {
	return styles.warn.Render(m.confirm.prompt) + "\n\n" + styles.help.Render("y to confirm, n to cancel")
}

func (m *Model) renderLoginRequired() string {
	return styles.warn.Render(pages.LoginRequiredMessage) + "\n\n" +
		styles.help.Render("Quit and run `bbx auth login`, then start the TUI again.")
}

func (m *Model) helpKeys() []key.Binding {
	k := m.keys
	switch m.view {
	case HomeView:
		return []key.Binding{k.up, k.down, k.enter, k.posts, k.newPost, k.search, k.refresh, k.quit}
	case ListView:
		if m.searching {
			return []key.Binding{k.back}
		}
		return []key.Binding{k.up, k.down, k.enter, k.home, k.newPost, k.search, k.category, k.refresh, k.quit}
	case DetailView:
		if m.commenting {
			return []key.Binding{k.enter, k.back}
		}
		return []key.Binding{k.up, k.down, k.edit, k.del, k.comment, k.delCmt, k.back, k.quit}
	case FormView:
		return []key.Binding{k.next, k.save, k.back}
	case ConfirmView:
		return []key.Binding{k.yes, k.no}
	}
	return []key.Binding{k.back, k.quit}
}
