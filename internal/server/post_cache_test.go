package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// The index page is cached whole per page number. A write inside the TTL
// is invisible until the entry expires; after expiry the next request
// rebuilds the page and the write shows up.
func TestGetPostsCacheStaleness(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, db := newTestServer(t)
	s.cache = cache.New(client)

	author := mustCreateUser(t, db, "cached")
	mustCreatePosts(t, db, author, 1)

	app := fiber.New()
	app.Get("/api/posts", s.GetPosts)

	fetchFirstText := func() string {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		page := decodePage(t, resp)
		if len(page.Items) == 0 {
			t.Fatal("expected at least one post")
		}
		return page.Items[0].Text
	}

	if got := fetchFirstText(); got != "post 1" {
		t.Fatalf("expected seeded post first, got %q", got)
	}
	if !mr.Exists(cache.IndexPageKey(1)) {
		t.Fatal("expected index page 1 to be cached after first request")
	}

	// A new post lands inside the TTL window.
	if err := db.Create(&models.Post{Text: "fresh", UserID: author.ID}).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	if got := fetchFirstText(); got != "post 1" {
		t.Fatalf("expected stale cached page inside TTL, got %q", got)
	}

	// Past the TTL the entry expires and the rebuild picks up the write.
	mr.FastForward(cache.IndexPageTTL + time.Second)

	if got := fetchFirstText(); got != "fresh" {
		t.Fatalf("expected fresh page after TTL expiry, got %q", got)
	}
}
