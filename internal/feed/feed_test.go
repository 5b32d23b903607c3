package feed

import (
	"fmt"
	"testing"
	"time"
	"yatube/internal/db"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/store"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestComposer(t *testing.T) (*Composer, *store.Store) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	s := store.New(database)
	return New(s), s
}

func seedUser(t *testing.T, s *store.Store, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x"}
	if err := s.CreateUser(&user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

// seedPosts creates n posts with strictly descending ages, so post "p1" is
// the oldest and "p<n>" the newest.
func seedPosts(t *testing.T, s *store.Store, authorID uint, n int, groupID *uint) {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 1; i <= n; i++ {
		post := models.Post{
			Text:     fmt.Sprintf("p%d", i),
			AuthorID: authorID,
			GroupID:  groupID,
			PubDate:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreatePost(&post); err != nil {
			t.Fatalf("failed to create post %d: %v", i, err)
		}
	}
}

func TestGlobalPagination(t *testing.T) {
	composer, s := newTestComposer(t)
	author := seedUser(t, s, "alice")
	seedPosts(t, s, author.ID, 13, nil)

	first, err := composer.Global(1)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if len(first.Posts) != pagination.PerPage {
		t.Errorf("page 1 holds %d posts, want %d", len(first.Posts), pagination.PerPage)
	}
	if first.Posts[0].Text != "p13" {
		t.Errorf("page 1 should start with the newest post, got %q", first.Posts[0].Text)
	}
	if first.TotalPages != 2 || first.HasPrev || !first.HasNext {
		t.Errorf("page 1 metadata wrong: %+v", first)
	}

	second, err := composer.Global(2)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if len(second.Posts) != 3 {
		t.Errorf("page 2 holds %d posts, want 3", len(second.Posts))
	}
	if second.Posts[len(second.Posts)-1].Text != "p1" {
		t.Errorf("page 2 should end with the oldest post, got %q", second.Posts[len(second.Posts)-1].Text)
	}
	if !second.HasPrev || second.HasNext {
		t.Errorf("page 2 metadata wrong: %+v", second)
	}

	// Out-of-range requests clamp instead of erroring.
	clamped, err := composer.Global(99)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if clamped.Number != 2 {
		t.Errorf("page 99 should clamp to 2, got %d", clamped.Number)
	}
}

func TestGlobalEmpty(t *testing.T) {
	composer, _ := newTestComposer(t)

	page, err := composer.Global(1)
	if err != nil {
		t.Fatalf("Global failed: %v", err)
	}
	if len(page.Posts) != 0 || page.Number != 1 || page.TotalPages != 1 {
		t.Errorf("empty timeline should still be page 1 of 1, got %+v", page)
	}
}

func TestGroupFeed(t *testing.T) {
	composer, s := newTestComposer(t)
	author := seedUser(t, s, "alice")
	group := models.Group{Title: "Technology", Slug: "tech"}
	if err := s.CreateGroup(&group); err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	seedPosts(t, s, author.ID, 2, &group.ID)
	seedPosts(t, s, author.ID, 1, nil)

	got, page, err := composer.Group("tech", 1)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if got.Title != "Technology" {
		t.Errorf("group title = %q", got.Title)
	}
	if len(page.Posts) != 2 {
		t.Errorf("group feed has %d posts, want 2", len(page.Posts))
	}

	if _, _, err := composer.Group("nope", 1); !store.IsNotFound(err) {
		t.Errorf("unknown slug should be ErrNotFound, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	composer, s := newTestComposer(t)
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	seedPosts(t, s, alice.ID, 3, nil)
	if err := s.Follow(bob.ID, alice.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	// Anonymous viewer.
	profile, err := composer.Profile("alice", 0, 1)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Author.ID != alice.ID {
		t.Errorf("author = %d, want %d", profile.Author.ID, alice.ID)
	}
	if profile.PostCount != 3 {
		t.Errorf("PostCount = %d, want 3", profile.PostCount)
	}
	if profile.Following {
		t.Error("anonymous viewers never see Following set")
	}

	// A follower.
	profile, err = composer.Profile("alice", bob.ID, 1)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if !profile.Following {
		t.Error("bob follows alice, Following should be set")
	}

	// The author looking at their own page.
	profile, err = composer.Profile("alice", alice.ID, 1)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Following {
		t.Error("Following is never set on your own profile")
	}

	if _, err := composer.Profile("nobody", 0, 1); !store.IsNotFound(err) {
		t.Errorf("unknown username should be ErrNotFound, got %v", err)
	}
}

func TestFollowingFeed(t *testing.T) {
	composer, s := newTestComposer(t)
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")
	seedPosts(t, s, alice.ID, 2, nil)
	seedPosts(t, s, bob.ID, 1, nil)
	seedPosts(t, s, carol.ID, 1, nil)

	if err := s.Follow(carol.ID, alice.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	page, err := composer.Following(carol.ID, 1)
	if err != nil {
		t.Fatalf("Following failed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("feed holds %d posts, want alice's 2", len(page.Posts))
	}
	for _, post := range page.Posts {
		if post.AuthorID != alice.ID {
			t.Errorf("post %q by %d leaked into the feed", post.Text, post.AuthorID)
		}
	}

	// Before any follow the feed is empty, not an error.
	page, err = composer.Following(bob.ID, 1)
	if err != nil {
		t.Fatalf("Following failed: %v", err)
	}
	if len(page.Posts) != 0 {
		t.Errorf("bob follows nobody, got %d posts", len(page.Posts))
	}
}
