package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/desertthunder/bbx/internal/shell"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	ListView
	DetailView
	FormView
	ConfirmView
	LoginRequiredView
)

// Form fields in tab order.
const (
	fieldTitle = iota
	fieldContent
	fieldCategory
	fieldCount
)

// confirmation is a pending destructive action waiting for y/n.
type confirmation struct {
	prompt string
	run    tea.Cmd
	back   ViewState
}

// Model represents the TUI application state.
type Model struct {
	ctx   context.Context
	api   pages.Backend
	shell *shell.Shell
	start string

	view   ViewState
	width  int
	height int

	home        *pages.PostList
	posts       *pages.PostList
	postList    list.Model
	search      textinput.Model
	searching   bool
	categories  []models.Category
	categoryIdx int // 0 means every category

	detail        *pages.PostDetail
	commentCursor int
	comment       textinput.Model
	commenting    bool

	form         *pages.PostForm
	titleInput   textinput.Model
	contentInput textarea.Model
	formCategory int
	focus        int

	confirm *confirmation
	status  string
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates the TUI over api for the user held by sh, opening at the client path start.
func NewModel(ctx context.Context, api pages.Backend, sh *shell.Shell, start string) *Model {
	if start == "" {
		start = "/"
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search posts"

	comment := textinput.New()
	comment.Prompt = "> "
	comment.Placeholder = "write a comment"

	title := textinput.New()
	title.Prompt = "Title: "
	title.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "Content (markdown)"

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &Model{
		ctx:          ctx,
		api:          api,
		shell:        sh,
		start:        start,
		view:         HomeView,
		width:        80,
		height:       24,
		home:         pages.NewHomeList(),
		posts:        pages.NewPostList(),
		postList:     l,
		search:       search,
		comment:      comment,
		titleInput:   title,
		contentInput: content,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init loads the categories and opens the start route.
func (m *Model) Init() tea.Cmd {
	_, cmd := m.navigate(m.start)
	return tea.Batch(m.fetchCategories(), cmd)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.postList.SetSize(msg.Width-4, msg.Height-10)
		m.contentInput.SetWidth(msg.Width - 4)
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		m.err = nil
		m.status = ""

		switch m.view {
		case HomeView, ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case LoginRequiredView:
			return m.handleLoginKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPostsLoaded:
		d := msg.data.(postsLoaded)
		if d.target.Resolve(d.ticket, d.posts, d.err) && d.target == m.activeList() {
			m.showList(d.target)
		}

	case MsgCategoriesLoaded:
		d := msg.data.(categoriesLoaded)
		if d.err != nil {
			m.err = d.err
			return m, nil
		}
		m.categories = d.categories
		m.home.SetCategories(d.categories)
		m.posts.SetCategories(d.categories)
		if l := m.activeList(); l != nil {
			m.showList(l)
		}

	case MsgDetailLoaded:
		// The detail records its own error; nothing to do unless it is stale.
		d := msg.data.(detailLoaded)
		if d.detail == m.detail {
			m.clampCursor()
		}

	case MsgFormLoaded:
		d := msg.data.(formLoaded)
		if d.form != m.form {
			return m, nil
		}
		if d.err != nil {
			m.err = d.err
			return m, nil
		}
		m.fillForm(d.form.Input)

	case MsgFormSaved:
		d := msg.data.(formSaved)
		if d.form != m.form {
			return m, nil
		}
		if d.err != nil {
			m.err = d.err
			return m, nil
		}
		_, cmd := m.navigate("/posts")
		m.status = fmt.Sprintf("Saved post #%d", d.post.ID)
		return m, cmd

	case MsgActionDone:
		d := msg.data.(actionDone)
		if d.detail != m.detail {
			return m, nil
		}
		if d.err != nil {
			m.err = d.err
			return m, nil
		}

		switch d.action {
		case actionDeletePost:
			_, cmd := m.navigate("/posts")
			m.status = "Post deleted"
			return m, cmd
		case actionDeleteComment:
			m.status = "Comment deleted"
			m.clampCursor()
		case actionAddComment:
			m.status = "Comment added"
			m.comment.SetValue("")
			m.comment.Blur()
			m.commenting = false
		}
	}

	return m, nil
}

// navigate opens a client path, applying the login guard.
func (m *Model) navigate(raw string) (tea.Model, tea.Cmd) {
	route, err := pages.Open(raw, m.shell)
	if err != nil {
		m.err = err
		return m, nil
	}
	return m.open(route)
}

func (m *Model) open(route pages.Route) (tea.Model, tea.Cmd) {
	m.searching = false
	m.search.Blur()

	switch route.Kind {
	case pages.RouteHome:
		m.view = HomeView
		m.showList(m.home)
		return m, m.fetchPosts(m.home, models.PostFilter{})
	case pages.RouteList:
		m.view = ListView
		m.showList(m.posts)
		return m, m.fetchPosts(m.posts, m.filter())
	case pages.RouteDetail:
		return m, m.openDetail(route.PostID)
	case pages.RouteNew, pages.RouteEdit:
		return m, m.openForm(route)
	case pages.RouteLoginRequired:
		m.view = LoginRequiredView
		return m, nil
	default:
		m.err = fmt.Errorf("%w: run `bbx auth login` to sign in", shared.ErrInvalidArgument)
		return m, nil
	}
}

func (m *Model) activeList() *pages.PostList {
	switch m.view {
	case HomeView:
		return m.home
	case ListView:
		return m.posts
	}
	return nil
}

func (m *Model) showList(l *pages.PostList) {
	m.postList.Title = "Latest posts"
	if l == m.posts {
		m.postList.Title = "Posts"
	}
	m.postList.SetItems(newPostItems(l.Posts(), pages.CategoryIndex(m.categories)))
}

func (m *Model) filter() models.PostFilter {
	return models.PostFilter{
		Keyword:    strings.TrimSpace(m.search.Value()),
		CategoryID: m.categoryID(),
	}
}

func (m *Model) categoryID() int {
	if m.categoryIdx <= 0 || m.categoryIdx > len(m.categories) {
		return 0
	}
	return m.categories[m.categoryIdx-1].ID
}

func (m *Model) categoryName() string {
	if id := m.categoryID(); id != 0 {
		c := m.categories[m.categoryIdx-1]
		return c.Name()
	}
	return "All"
}

func (m *Model) fetchPosts(target *pages.PostList, filter models.PostFilter) tea.Cmd {
	ticket := target.Query(filter)
	return func() tea.Msg {
		posts, err := m.api.ListPosts(m.ctx, filter)
		return postsLoadedMsg(target, ticket, posts, err)
	}
}

func (m *Model) fetchCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.api.ListCategories(m.ctx)
		return categoriesLoadedMsg(categories, err)
	}
}

func (m *Model) openDetail(postID int) tea.Cmd {
	// The confirm view asks before any delete is started.
	d := pages.NewPostDetail(postID, m.api, m.shell, pages.Always(true))
	m.detail = d
	m.commentCursor = 0
	m.commenting = false
	m.comment.SetValue("")
	m.view = DetailView

	return func() tea.Msg {
		return detailLoadedMsg(d, d.Load(m.ctx))
	}
}

func (m *Model) openForm(route pages.Route) tea.Cmd {
	var f *pages.PostForm
	if route.Kind == pages.RouteEdit {
		f = pages.NewEditForm(route.PostID, m.api, m.shell)
	} else {
		f = pages.NewCreateForm(m.api, m.shell)
	}

	m.form = f
	m.view = FormView
	m.fillForm(models.PostInput{})
	m.focus = fieldTitle
	m.applyFocus()

	if f.Loaded() {
		return nil
	}
	return func() tea.Msg {
		return formLoadedMsg(f, f.Load(m.ctx))
	}
}

func (m *Model) fillForm(in models.PostInput) {
	m.titleInput.SetValue(in.Title)
	m.contentInput.SetValue(in.Content)
	m.formCategory = 0
	for i, c := range m.categories {
		if c.ID == in.CategoryID {
			m.formCategory = i
		}
	}
}

func (m *Model) applyFocus() {
	m.titleInput.Blur()
	m.contentInput.Blur()
	switch m.focus {
	case fieldTitle:
		m.titleInput.Focus()
	case fieldContent:
		m.contentInput.Focus()
	}
}

func (m *Model) clampCursor() {
	if m.detail == nil {
		return
	}
	n := len(m.detail.Comments())
	if m.commentCursor >= n {
		m.commentCursor = n - 1
	}
	if m.commentCursor < 0 {
		m.commentCursor = 0
	}
}

func (m *Model) ask(prompt string, run tea.Cmd) {
	m.confirm = &confirmation{prompt: prompt, run: run, back: m.view}
	m.view = ConfirmView
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return m, nil
		}

		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			return m, tea.Batch(cmd, m.fetchPosts(m.posts, m.filter()))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.postList.SelectedItem().(postItem); ok {
			return m.navigate(fmt.Sprintf("/posts/%d", item.post.ID))
		}
		return m, nil
	case key.Matches(msg, m.keys.home):
		return m.navigate("/")
	case key.Matches(msg, m.keys.posts):
		return m.navigate("/posts")
	case key.Matches(msg, m.keys.newPost):
		return m.navigate("/posts/new")
	case key.Matches(msg, m.keys.refresh):
		if m.view == HomeView {
			return m.navigate("/")
		}
		return m.navigate("/posts")
	case key.Matches(msg, m.keys.search):
		var cmd tea.Cmd
		if m.view != ListView {
			_, cmd = m.navigate("/posts")
		}
		m.searching = true
		m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.category) && m.view == ListView:
		m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
		return m, m.fetchPosts(m.posts, m.filter())
	}

	var cmd tea.Cmd
	m.postList, cmd = m.postList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail

	if m.commenting {
		switch msg.Type {
		case tea.KeyEsc:
			m.commenting = false
			m.comment.Blur()
			return m, nil
		case tea.KeyEnter:
			content := m.comment.Value()
			return m, func() tea.Msg {
				_, err := d.AddComment(m.ctx, content)
				return actionDoneMsg(actionAddComment, d, err)
			}
		}

		var cmd tea.Cmd
		m.comment, cmd = m.comment.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m.navigate("/posts")
	case key.Matches(msg, m.keys.refresh):
		return m, m.openDetail(d.PostID())
	case key.Matches(msg, m.keys.up):
		if m.commentCursor > 0 {
			m.commentCursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.commentCursor < len(d.Comments())-1 {
			m.commentCursor++
		}
	case key.Matches(msg, m.keys.edit):
		if m.shell.LoggedIn() && !d.CanEditPost() {
			m.err = fmt.Errorf("%w: only the author can edit this post", shared.ErrForbidden)
			return m, nil
		}
		return m.navigate(fmt.Sprintf("/posts/%d/edit", d.PostID()))
	case key.Matches(msg, m.keys.del):
		if !d.CanEditPost() {
			m.err = fmt.Errorf("%w: only the author can delete this post", shared.ErrForbidden)
			return m, nil
		}
		m.ask(pages.DeletePostPrompt, func() tea.Msg {
			_, err := d.DeletePost(m.ctx)
			return actionDoneMsg(actionDeletePost, d, err)
		})
	case key.Matches(msg, m.keys.comment):
		if !d.CanComment() {
			m.status = pages.LoginToCommentNotice
			return m, nil
		}
		m.commenting = true
		return m, m.comment.Focus()
	case key.Matches(msg, m.keys.delCmt):
		comments := d.Comments()
		if m.commentCursor >= len(comments) {
			return m, nil
		}
		c := comments[m.commentCursor]
		if !d.CanDeleteComment(c) {
			m.err = fmt.Errorf("%w: only the author can delete this comment", shared.ErrForbidden)
			return m, nil
		}
		m.ask(pages.DeleteCommentPrompt, func() tea.Msg {
			_, err := d.DeleteComment(m.ctx, c.ID)
			return actionDoneMsg(actionDeleteComment, d, err)
		})
	}

	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form

	switch {
	case msg.Type == tea.KeyEsc:
		if f.Mode() == pages.EditMode {
			return m.navigate(fmt.Sprintf("/posts/%d", f.PostID()))
		}
		return m.navigate("/posts")
	case key.Matches(msg, m.keys.next):
		m.focus = (m.focus + 1) % fieldCount
		m.applyFocus()
		return m, nil
	case key.Matches(msg, m.keys.save):
		f.Input = models.PostInput{
			Title:      m.titleInput.Value(),
			Content:    m.contentInput.Value(),
			CategoryID: m.formCategoryID(),
		}
		return m, func() tea.Msg {
			post, err := f.Submit(m.ctx)
			return formSavedMsg(f, post, err)
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case fieldContent:
		m.contentInput, cmd = m.contentInput.Update(msg)
	case fieldCategory:
		if n := len(m.categories); n > 0 {
			switch msg.Type {
			case tea.KeyRight:
				m.formCategory = (m.formCategory + 1) % n
			case tea.KeyLeft:
				m.formCategory = (m.formCategory + n - 1) % n
			}
		}
	}
	return m, cmd
}

func (m *Model) formCategoryID() int {
	if m.formCategory < 0 || m.formCategory >= len(m.categories) {
		return 0
	}
	return m.categories[m.formCategory].ID
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = c.back
		m.confirm = nil
		return m, c.run
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = c.back
		m.confirm = nil
		m.status = "Cancelled"
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		return m.navigate("/posts")
	}
	return m, nil
}
