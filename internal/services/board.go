package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/bbx/internal/models"
	"github.com/desertthunder/bbx/internal/shared"
)

// ListPosts calls GET /api/posts with the keyword and category filters.
func (c *Client) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	params := url.Values{}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		params.Set("keyword", kw)
	}
	if filter.CategoryID > 0 {
		params.Set("category_id", strconv.Itoa(filter.CategoryID))
	}

	path := "/api/posts"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var posts []models.Post
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost calls GET /api/posts/{id}.
func (c *Client) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost calls POST /api/posts.
func (c *Client) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.doJSON(ctx, http.MethodPost, "/api/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost calls PUT /api/posts/{id}.
func (c *Client) UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error) {
	var post models.Post
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost calls DELETE /api/posts/{id}.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

// ListComments calls GET /api/posts/{id}/comments.
func (c *Client) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment calls POST /api/posts/{id}/comments.
func (c *Client) CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error) {
	var comment models.Comment
	body := models.CommentInput{PostID: postID, Content: content}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment calls PUT /api/comments/{id}.
func (c *Client) UpdateComment(ctx context.Context, commentID int, content string) (*models.Comment, error) {
	var comment models.Comment
	body := models.CommentUpdate{Content: content}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/comments/%d", commentID), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment calls DELETE /api/posts/{postID}/comments/{commentID}.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID), nil, nil)
}

// GetUser calls GET /api/users/{id}.
func (c *Client) GetUser(ctx context.Context, id int) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser calls PUT /api/users/{id}.
func (c *Client) UpdateUser(ctx context.Context, id int, in models.UserUpdate) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCategories calls GET /api/categories.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory calls GET /api/categories/{id}.
func (c *Client) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var category models.Category
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// AuthURL calls GET /api/auth/{provider}/url. The backend may answer with a bare JSON string
// or an object carrying a url field.
func (c *Client) AuthURL(ctx context.Context, provider string) (string, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/auth/%s/url", url.PathEscape(provider)), nil, &raw); err != nil {
		return "", err
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}

	var obj models.AuthURL
	if err := json.Unmarshal(raw, &obj); err == nil && obj.URL != "" {
		return obj.URL, nil
	}
	return "", fmt.Errorf("%w: authorization url missing from response", shared.ErrAPIRequest)
}

// ExchangeCode calls POST /api/auth/{provider} with the authorization code.
//
// The result is returned as decoded; callers check that both user and token are present.
func (c *Client) ExchangeCode(ctx context.Context, provider, code string) (*models.ExchangeResult, error) {
	var result models.ExchangeResult
	body := map[string]string{"code": code}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/"+url.PathEscape(provider), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
