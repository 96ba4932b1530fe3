package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUserProfile(t *testing.T) {
	t.Run("login payload shape", func(t *testing.T) {
		var u UserProfile
		if err := json.Unmarshal([]byte(`{"id":1,"nickname":"n"}`), &u); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if u.ID != 1 || u.Nickname != "n" {
			t.Errorf("unexpected profile %+v", u)
		}
	})

	t.Run("user resource shape", func(t *testing.T) {
		var u UserProfile
		body := `{"user_id":7,"social_id":"k-7","nickname":"kim","profile_image":"https://img.test/a.png"}`
		if err := json.Unmarshal([]byte(body), &u); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if u.ID != 7 || u.ProfileImageURL != "https://img.test/a.png" {
			t.Errorf("unexpected profile %+v", u)
		}
	})

	t.Run("DisplayName", func(t *testing.T) {
		var nilUser *UserProfile
		if nilUser.DisplayName() != "anonymous" {
			t.Error("nil user should be anonymous")
		}
		if (&UserProfile{Nickname: " "}).DisplayName() != "anonymous" {
			t.Error("blank nickname should be anonymous")
		}
	})
}

func TestSessionValid(t *testing.T) {
	tc := []struct {
		name    string
		session *Session
		want    bool
	}{
		{name: "nil", session: nil, want: false},
		{name: "token without user", session: &Session{AccessToken: "tok"}, want: false},
		{name: "user without token", session: &Session{User: UserProfile{ID: 1}}, want: false},
		{name: "complete", session: &Session{AccessToken: "tok", User: UserProfile{ID: 1}}, want: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostInputValidate(t *testing.T) {
	if problems := (PostInput{Title: "t", Content: "c", CategoryID: 1}).Validate(); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
	if problems := (PostInput{Title: " "}).Validate(); len(problems) != 3 {
		t.Errorf("expected three problems, got %v", problems)
	}
}

func TestPostAuthorName(t *testing.T) {
	p := Post{User: &UserProfile{Nickname: "lee"}}
	if p.AuthorName() != "lee" {
		t.Errorf("AuthorName() = %q", p.AuthorName())
	}
	p.AuthorNickname = "park"
	if p.AuthorName() != "park" {
		t.Errorf("AuthorName() = %q", p.AuthorName())
	}
	if (&Post{}).AuthorName() != "anonymous" {
		t.Error("expected anonymous fallback")
	}
}

func TestCategoryName(t *testing.T) {
	var c *Category
	if c.Name() != "Uncategorized" {
		t.Errorf("nil category name = %q", c.Name())
	}
	if (&Category{Status: CategoryTip}).Name() != "Tips" {
		t.Error("expected Tips")
	}
}

func TestBackendTimestamps(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 34, 56, 123456000, time.UTC)

	t.Run("post without zone", func(t *testing.T) {
		var p Post
		body := `{"post_id":1,"title":"t","created_at":"2024-05-01T12:34:56.123456","updated_at":"2024-05-01T12:34:56"}`
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if p.ID != 1 || p.Title != "t" {
			t.Errorf("unexpected post %+v", p)
		}
		if !p.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, want)
		}
		if !p.UpdatedAt.Equal(want.Truncate(time.Second)) {
			t.Errorf("UpdatedAt = %v", p.UpdatedAt)
		}
	})

	t.Run("comment with zone", func(t *testing.T) {
		var c Comment
		body := `{"comment_id":5,"user":{"user_id":7,"nickname":"n"},"created_at":"2024-05-01T21:34:56.123456+09:00"}`
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if c.ID != 5 || c.User == nil || c.User.ID != 7 {
			t.Errorf("unexpected comment %+v", c)
		}
		if !c.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", c.CreatedAt, want)
		}
	})

	t.Run("null and missing are zero", func(t *testing.T) {
		var p Post
		if err := json.Unmarshal([]byte(`{"post_id":2,"updated_at":null}`), &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !p.CreatedAt.IsZero() || !p.UpdatedAt.IsZero() {
			t.Errorf("expected zero times, got %v %v", p.CreatedAt, p.UpdatedAt)
		}
	})

	t.Run("garbage is an error", func(t *testing.T) {
		var p Post
		if err := json.Unmarshal([]byte(`{"created_at":"yesterday"}`), &p); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("export round trip", func(t *testing.T) {
		data, err := json.Marshal(Post{ID: 3, CreatedAt: want})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var p Post
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if p.ID != 3 || !p.CreatedAt.Equal(want) {
			t.Errorf("round trip = %+v", p)
		}
	})
}
