// Package ui implements an interactive terminal interface for the board using bubbletea's Elm architecture.
//
// The TUI is a thin front end over the page views in [pages]:
//  1. [HomeView] : The latest posts
//  2. [ListView] : Every post, with keyword search and a category filter
//  3. [DetailView] : A post with its comments
//  4. [FormView] : Create or edit a post
//  5. [ConfirmView] : Approve a delete before it is sent
//  6. [LoginRequiredView] : Shown when a guarded route is opened while signed out
//
// Backend calls run as commands and report back through the Msg union. List fetches carry the
// ticket issued when the query started, so a slow reply to an older search never replaces the
// results of a newer one.
package ui
