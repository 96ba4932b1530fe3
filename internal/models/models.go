// package models defines the board entities exchanged with the backend and the local session record
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// naiveLayout is how the backend writes datetimes that carry no zone; they are read as UTC.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// ParseTimestamp reads a backend datetime, with or without a zone offset. Empty means zero.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// Timestamp decodes the backend's datetime strings; null decodes to the zero time.
type Timestamp time.Time

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// UserProfile is the signed-in user as reported by the backend on login.
//
// The client never edits it locally except through [UserUpdate].
type UserProfile struct {
	ID              int    `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image,omitempty"`
}

// UnmarshalJSON accepts both the login payload shape ("id") and the user resource shape ("user_id").
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              *int   `json:"id"`
		UserID          *int   `json:"user_id"`
		Nickname        string `json:"nickname"`
		ProfileImage    string `json:"profile_image"`
		ProfileImageURL string `json:"profileImageUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = UserProfile{Nickname: raw.Nickname, ProfileImageURL: raw.ProfileImage}
	switch {
	case raw.ID != nil:
		u.ID = *raw.ID
	case raw.UserID != nil:
		u.ID = *raw.UserID
	}
	if u.ProfileImageURL == "" {
		u.ProfileImageURL = raw.ProfileImageURL
	}
	return nil
}

// DisplayName falls back to a placeholder for users without a nickname.
func (u *UserProfile) DisplayName() string {
	if u == nil || strings.TrimSpace(u.Nickname) == "" {
		return "anonymous"
	}
	return u.Nickname
}

// Session is the client-local authentication record.
type Session struct {
	AccessToken string      `json:"access_token"`
	User        UserProfile `json:"user"`
}

// Valid reports whether s can authorize write actions: a token and a user id are both required.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.User.ID != 0
}

// CategoryStatus is the board a post belongs to.
type CategoryStatus string

const (
	CategoryFree     CategoryStatus = "FREE"
	CategoryTip      CategoryStatus = "TIP"
	CategoryQuestion CategoryStatus = "QUESTION"
)

// Description returns the board's display name.
func (s CategoryStatus) Description() string {
	switch s {
	case CategoryFree:
		return "Free board"
	case CategoryTip:
		return "Tips"
	case CategoryQuestion:
		return "Questions"
	default:
		return "Uncategorized"
	}
}

// Category is a board section.
type Category struct {
	ID     int            `json:"category_id"`
	Status CategoryStatus `json:"category_status"`
}

// Name is the category's display name.
func (c *Category) Name() string {
	if c == nil {
		return CategoryStatus("").Description()
	}
	return c.Status.Description()
}

// Post is a board post as returned by the backend.
type Post struct {
	ID             int          `json:"post_id"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	CategoryID     int          `json:"category_id"`
	AuthorID       int          `json:"user_id"`
	AuthorNickname string       `json:"authorNickname,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	ViewCount      int          `json:"view_count"`
	User           *UserProfile `json:"user,omitempty"`
	Category       *Category    `json:"category,omitempty"`
}

// UnmarshalJSON decodes the timestamps with [Timestamp].
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"created_at"`
		UpdatedAt Timestamp `json:"updated_at"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = time.Time(aux.CreatedAt), time.Time(aux.UpdatedAt)
	return nil
}

// AuthorName prefers the flattened nickname, then the embedded user.
func (p *Post) AuthorName() string {
	if p.AuthorNickname != "" {
		return p.AuthorNickname
	}
	return p.User.DisplayName()
}

// Comment is a reply on a post.
type Comment struct {
	ID           int          `json:"comment_id"`
	PostID       int          `json:"post_id"`
	AuthorUserID int          `json:"user_id"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	User         *UserProfile `json:"user,omitempty"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"created_at"`
		UpdatedAt Timestamp `json:"updated_at"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.CreatedAt, c.UpdatedAt = time.Time(aux.CreatedAt), time.Time(aux.UpdatedAt)
	return nil
}

// PostInput is the create/update payload for a post.
type PostInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID int    `json:"category_id"`
}

// Validate checks the fields the form marks as required.
func (in PostInput) Validate() []string {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		problems = append(problems, "content is required")
	}
	if in.CategoryID <= 0 {
		problems = append(problems, "category is required")
	}
	return problems
}

// CommentInput is the create payload for a comment.
type CommentInput struct {
	PostID  int    `json:"post_id"`
	Content string `json:"content"`
}

// CommentUpdate is the update payload for a comment.
type CommentUpdate struct {
	Content string `json:"content"`
}

// UserUpdate carries the editable profile fields; empty fields are omitted.
type UserUpdate struct {
	Nickname        string `json:"nickname,omitempty"`
	ProfileImageURL string `json:"profile_image,omitempty"`
}

// PostFilter narrows the post list. A zero CategoryID means every category.
type PostFilter struct {
	Keyword    string
	CategoryID int
}

// ExchangeResult is the backend's reply to an authorization code exchange.
type ExchangeResult struct {
	User        *UserProfile `json:"user"`
	AccessToken string       `json:"access_token"`
}

// AuthURL is the backend's reply to an authorization URL request.
type AuthURL struct {
	URL string `json:"url"`
}

// PostExport is a post bundled with its comments for export.
type PostExport struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}
