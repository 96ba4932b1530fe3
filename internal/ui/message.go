package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/pages"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPostsLoaded MsgKind = iota
	MsgCategoriesLoaded
	MsgDetailLoaded
	MsgFormLoaded
	MsgFormSaved
	MsgActionDone
)

type postsLoaded struct {
	target *pages.PostList
	ticket pages.Ticket
	posts  []models.Post
	err    error
}

// postsLoadedMsg is the constructor for [MsgPostsLoaded]. The ticket is the one issued when the
// query started, so a late reply to an older query can be recognized.
func postsLoadedMsg(target *pages.PostList, ticket pages.Ticket, posts []models.Post, err error) Msg {
	return Msg{kind: MsgPostsLoaded, data: postsLoaded{target, ticket, posts, err}}
}

type categoriesLoaded struct {
	categories []models.Category
	err        error
}

// categoriesLoadedMsg is the constructor for [MsgCategoriesLoaded]
func categoriesLoadedMsg(categories []models.Category, err error) Msg {
	return Msg{kind: MsgCategoriesLoaded, data: categoriesLoaded{categories, err}}
}

type detailLoaded struct {
	detail *pages.PostDetail
	err    error
}

// detailLoadedMsg is the constructor for [MsgDetailLoaded]
func detailLoadedMsg(detail *pages.PostDetail, err error) Msg {
	return Msg{kind: MsgDetailLoaded, data: detailLoaded{detail, err}}
}

type formLoaded struct {
	form *pages.PostForm
	err  error
}

// formLoadedMsg is the constructor for [MsgFormLoaded]
func formLoadedMsg(form *pages.PostForm, err error) Msg {
	return Msg{kind: MsgFormLoaded, data: formLoaded{form, err}}
}

type formSaved struct {
	form *pages.PostForm
	post *models.Post
	err  error
}

// formSavedMsg is the constructor for [MsgFormSaved]
func formSavedMsg(form *pages.PostForm, post *models.Post, err error) Msg {
	return Msg{kind: MsgFormSaved, data: formSaved{form, post, err}}
}

// Action names carried by [MsgActionDone].
const (
	actionDeletePost    = "delete_post"
	actionDeleteComment = "delete_comment"
	actionAddComment    = "add_comment"
)

type actionDone struct {
	action string
	detail *pages.PostDetail
	err    error
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action string, detail *pages.PostDetail, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionDone{action, detail, err}}
}
