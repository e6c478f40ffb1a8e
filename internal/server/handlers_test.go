package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a Server over in-memory sqlite without Redis or the
// Prometheus middleware.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db := setupHandlerTestDB(t)

	pageCache := cache.New(nil)
	s := &Server{
		config: &config.Config{JWTSecret: "handler-test-secret-handler-test"},
		db:     db,
		cache:  pageCache,
	}
	s.userRepo = repository.NewUserRepository(db)
	s.postRepo = repository.NewPostRepository(db)
	s.commentRepo = repository.NewCommentRepository(db)
	s.groupRepo = repository.NewGroupRepository(db, pageCache)
	s.followRepo = repository.NewFollowRepository(db)
	s.postService = service.NewPostService(s.postRepo, s.groupRepo, s.userRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo, s.postRepo)

	return s, db
}

func mustCreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func mustCreatePosts(t *testing.T, db *gorm.DB, author models.User, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		post := models.Post{Text: fmt.Sprintf("post %d", i), UserID: author.ID}
		if err := db.Create(&post).Error; err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}
}

// asUser injects the user's id the way AuthRequired would.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func decodePage(t *testing.T, resp *http.Response) pagination.Page[models.Post] {
	t.Helper()
	var page pagination.Page[models.Post]
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return page
}

func TestGetPostsPagination(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "paginator")
	mustCreatePosts(t, db, author, 13)

	app := fiber.New()
	app.Get("/api/posts", s.GetPosts)

	t.Run("first page holds ten posts", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		page := decodePage(t, resp)
		if len(page.Items) != 10 {
			t.Fatalf("expected 10 posts on page 1, got %d", len(page.Items))
		}
		if page.TotalPages != 2 {
			t.Fatalf("expected 2 total pages, got %d", page.TotalPages)
		}
		if page.Items[0].Text != "post 13" {
			t.Fatalf("expected newest post first, got %q", page.Items[0].Text)
		}
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts?page=2", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		page := decodePage(t, resp)
		if len(page.Items) != 3 {
			t.Fatalf("expected 3 posts on page 2, got %d", len(page.Items))
		}
		if !page.HasPrevious || page.HasNext {
			t.Fatalf("expected final page navigation, got prev=%v next=%v", page.HasPrevious, page.HasNext)
		}
	})

	t.Run("out-of-range page clamps to the last", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts?page=99", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for clamped page, got %d", resp.StatusCode)
		}
		page := decodePage(t, resp)
		if page.Number != 2 {
			t.Fatalf("expected clamp to page 2, got %d", page.Number)
		}
		if len(page.Items) != 3 {
			t.Fatalf("expected last page contents, got %d items", len(page.Items))
		}
	})
}

func TestGetGroupPostsUnknownSlug(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	app := fiber.New()
	app.Get("/api/groups/:slug/posts", s.GetGroupPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/groups/no-such-group/posts", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown group, got %d", resp.StatusCode)
	}
}

func TestGetGroupPostsScopedToGroup(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "grouper")

	group := models.Group{Title: "Woodworking", Slug: "woodworking"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}

	inGroup := models.Post{Text: "in group", UserID: author.ID, GroupID: &group.ID}
	outside := models.Post{Text: "outside", UserID: author.ID}
	if err := db.Create(&inGroup).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := db.Create(&outside).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	app := fiber.New()
	app.Get("/api/groups/:slug/posts", s.GetGroupPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/groups/woodworking/posts", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Group models.Group                  `json:"group"`
		Posts pagination.Page[models.Post] `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Group.Slug != "woodworking" {
		t.Fatalf("expected group in response, got %q", body.Group.Slug)
	}
	if len(body.Posts.Items) != 1 || body.Posts.Items[0].Text != "in group" {
		t.Fatalf("expected only the group's post, got %+v", body.Posts.Items)
	}
}

func TestGetProfilePosts(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "astrid")
	viewer := mustCreateUser(t, db, "leo")
	mustCreatePosts(t, db, author, 3)

	app := fiber.New()
	app.Get("/api/profiles/:username/posts", s.GetProfilePosts)

	type profileBody struct {
		Author    models.User                   `json:"author"`
		Following bool                          `json:"following"`
		Posts     pagination.Page[models.Post] `json:"posts"`
	}

	t.Run("short page size", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/profiles/astrid/posts", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		var body profileBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Posts.Items) != 2 {
			t.Fatalf("expected 2 posts per profile page, got %d", len(body.Posts.Items))
		}
		if body.Posts.TotalPages != 2 {
			t.Fatalf("expected 2 pages for 3 posts, got %d", body.Posts.TotalPages)
		}
		if body.Following {
			t.Fatal("anonymous viewer must not appear to follow")
		}
	})

	t.Run("following flag reflects the caller", func(t *testing.T) {
		if err := db.Create(&models.Follow{UserID: viewer.ID, AuthorID: author.ID}).Error; err != nil {
			t.Fatalf("create follow: %v", err)
		}
		token, err := s.generateToken(viewer.ID, viewer.Username)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/profiles/astrid/posts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		var body profileBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !body.Following {
			t.Fatal("expected following=true for a follower")
		}
	})

	t.Run("unknown author is 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/profiles/ghost/posts", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "writer")

	app := fiber.New()
	app.Post("/api/posts", asUser(author.ID), s.CreatePost)

	body := []byte(`{"text":"first entry"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/profiles/writer/posts" {
		t.Fatalf("expected redirect to profile, got %q", loc)
	}

	var count int64
	if err := db.Model(&models.Post{}).Count(&count).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 post, got %d", count)
	}
}

func TestCreatePostRejectsEmptyText(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "writer")

	app := fiber.New()
	app.Post("/api/posts", asUser(author.ID), s.CreatePost)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader([]byte(`{"text":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var errBody models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errBody.Fields) == 0 || errBody.Fields[0].Field != "Text" {
		t.Fatalf("expected a field error on Text, got %+v", errBody.Fields)
	}
}

func TestUpdatePostNonAuthorRedirectsUnchanged(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "author")
	intruder := mustCreateUser(t, db, "intruder")

	post := models.Post{Text: "original", UserID: author.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	app := fiber.New()
	app.Put("/api/posts/:id", asUser(intruder.ID), s.UpdatePost)

	body := []byte(`{"text":"hijacked"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != fmt.Sprintf("/api/posts/%d", post.ID) {
		t.Fatalf("expected redirect to post detail, got %q", loc)
	}

	var reloaded models.Post
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Text != "original" {
		t.Fatalf("post text must be unchanged, got %q", reloaded.Text)
	}
}

func TestUpdatePostAuthorSucceeds(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "author")

	post := models.Post{Text: "original", UserID: author.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	app := fiber.New()
	app.Put("/api/posts/:id", asUser(author.ID), s.UpdatePost)

	body := []byte(`{"text":"revised"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	var reloaded models.Post
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Text != "revised" {
		t.Fatalf("expected revised text, got %q", reloaded.Text)
	}
}

func TestCreateCommentRedirectsToDetail(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	author := mustCreateUser(t, db, "author")
	reader := mustCreateUser(t, db, "reader")

	post := models.Post{Text: "worth discussing", UserID: author.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	app := fiber.New()
	app.Post("/api/posts/:id/comments", asUser(reader.ID), s.CreateComment)
	app.Get("/api/posts/:id", s.GetPost)

	body := []byte(`{"text":"great point"}`)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != fmt.Sprintf("/api/posts/%d", post.ID) {
		t.Fatalf("expected redirect to detail, got %q", loc)
	}

	detailResp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = detailResp.Body.Close() }()

	var detail struct {
		Post     models.Post      `json:"post"`
		Comments []models.Comment `json:"comments"`
	}
	if err := json.NewDecoder(detailResp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].Text != "great point" {
		t.Fatalf("expected the new comment on detail, got %+v", detail.Comments)
	}
	if detail.Post.CommentsCount != 1 {
		t.Fatalf("expected comments_count 1, got %d", detail.Post.CommentsCount)
	}
}

func TestCommentOnMissingPost(t *testing.T) {
	t.Parallel()

	s, db := newTestServer(t)
	reader := mustCreateUser(t, db, "reader")

	app := fiber.New()
	app.Post("/api/posts/:id/comments", asUser(reader.ID), s.CreateComment)

	body := []byte(`{"text":"into the void"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/posts/999/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
