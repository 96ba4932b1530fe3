// Package models defines the entities shared by the bbx client packages.
//
// The package contains two categories of types:
//
// 1. Backend resources, decoded from the board's JSON API:
//   - [Post] : a board post with author and category references
//   - [Comment] : a reply scoped to a post
//   - [Category] : a board section ([CategoryStatus] FREE, TIP, QUESTION)
//   - [UserProfile] : the public profile of a user
//
// 2. Client-local records:
//   - [Session] : access token plus the profile it belongs to; only a [Session.Valid] session authenticates
//   - [PostFilter] : keyword and category filter for the list view
//
// Field names follow the backend (post_id, user_id, view_count); [UserProfile] also accepts the
// login payload's "id" key.
package models
