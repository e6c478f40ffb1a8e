package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func countFollows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Follow{}).Count(&count).Error; err != nil {
		t.Fatalf("count follows: %v", err)
	}
	return count
}

func TestFollowLifecycle(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	reader := mustCreateUser(t, db, "reader")
	author := mustCreateUser(t, db, "author")
	other := mustCreateUser(t, db, "other")

	mustCreatePosts(t, db, author, 2)
	mustCreatePosts(t, db, other, 1)

	app := fiber.New()
	app.Post("/api/profiles/:username/follow", asUser(reader.ID), s.FollowAuthor)
	app.Delete("/api/profiles/:username/follow", asUser(reader.ID), s.UnfollowAuthor)
	app.Get("/api/feed", asUser(reader.ID), s.GetFeed)

	doFollow := func(method, username string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(method, fmt.Sprintf("/api/profiles/%s/follow", username), nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}

	t.Run("follow creates a single edge", func(t *testing.T) {
		resp := doFollow(http.MethodPost, "author")
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/api/profiles/author/posts" {
			t.Fatalf("expected redirect to profile, got %q", loc)
		}
		if got := countFollows(t, db); got != 1 {
			t.Fatalf("expected 1 follow edge, got %d", got)
		}
	})

	t.Run("repeat follow is idempotent", func(t *testing.T) {
		resp := doFollow(http.MethodPost, "author")
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}
		if got := countFollows(t, db); got != 1 {
			t.Fatalf("repeat follow must not add edges, got %d", got)
		}
	})

	t.Run("self-follow is a no-op", func(t *testing.T) {
		resp := doFollow(http.MethodPost, "reader")
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}
		if got := countFollows(t, db); got != 1 {
			t.Fatalf("self-follow must not add edges, got %d", got)
		}
	})

	t.Run("feed holds only followed authors", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feed", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		var page pagination.Page[models.Post]
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("decode feed: %v", err)
		}
		if len(page.Items) != 2 {
			t.Fatalf("expected 2 feed posts, got %d", len(page.Items))
		}
		for _, p := range page.Items {
			if p.UserID != author.ID {
				t.Fatalf("feed leaked post by user %d", p.UserID)
			}
		}
	})

	t.Run("unfollow removes the edge", func(t *testing.T) {
		resp := doFollow(http.MethodDelete, "author")
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", resp.StatusCode)
		}
		if got := countFollows(t, db); got != 0 {
			t.Fatalf("expected 0 follow edges, got %d", got)
		}
	})

	t.Run("unfollow without an edge still succeeds", func(t *testing.T) {
		resp := doFollow(http.MethodDelete, "author")
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303 for missing edge, got %d", resp.StatusCode)
		}
	})

	t.Run("following an unknown author is 404", func(t *testing.T) {
		resp := doFollow(http.MethodPost, "ghost")
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("empty feed after unfollowing everyone", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/feed", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		var page pagination.Page[models.Post]
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("decode feed: %v", err)
		}
		if len(page.Items) != 0 {
			t.Fatalf("expected empty feed, got %d items", len(page.Items))
		}
	})
}
