package feed

import (
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/store"
)

// Composer builds the four timelines. Every feed is recomputed per request;
// there is no cursor state to persist.
type Composer struct {
	store *store.Store
}

func New(s *store.Store) *Composer {
	return &Composer{store: s}
}

// Global returns one page of the site-wide timeline.
func (f *Composer) Global(page int) (*pagination.Page, error) {
	total, err := f.store.CountPosts()
	if err != nil {
		return nil, err
	}
	number, totalPages, offset := pagination.Clamp(page, total)
	posts, err := f.store.Posts(offset, pagination.PerPage)
	if err != nil {
		return nil, err
	}
	if err := f.store.FillCommentCounts(posts); err != nil {
		return nil, err
	}
	return pagination.NewPage(posts, number, totalPages), nil
}

// Group returns the group's timeline. store.ErrNotFound when the slug does
// not resolve.
func (f *Composer) Group(slug string, page int) (*models.Group, *pagination.Page, error) {
	group, err := f.store.GroupBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	total, err := f.store.CountPostsByGroup(group.ID)
	if err != nil {
		return nil, nil, err
	}
	number, totalPages, offset := pagination.Clamp(page, total)
	posts, err := f.store.PostsByGroup(group.ID, offset, pagination.PerPage)
	if err != nil {
		return nil, nil, err
	}
	if err := f.store.FillCommentCounts(posts); err != nil {
		return nil, nil, err
	}
	return group, pagination.NewPage(posts, number, totalPages), nil
}

// ProfileFeed is an author's timeline plus the viewer-dependent follow flag.
type ProfileFeed struct {
	Author *models.User
	Page   *pagination.Page
	// PostCount is the author's total, independent of the page slice.
	PostCount int64
	// Following is set only for an authenticated viewer who is not the
	// author themself.
	Following bool
}

// Profile returns the author's timeline. viewerID is zero for anonymous
// requests. store.ErrNotFound when the username does not resolve.
func (f *Composer) Profile(username string, viewerID uint, page int) (*ProfileFeed, error) {
	author, err := f.store.UserByUsername(username)
	if err != nil {
		return nil, err
	}
	total, err := f.store.CountPostsByAuthor(author.ID)
	if err != nil {
		return nil, err
	}
	number, totalPages, offset := pagination.Clamp(page, total)
	posts, err := f.store.PostsByAuthor(author.ID, offset, pagination.PerPage)
	if err != nil {
		return nil, err
	}
	if err := f.store.FillCommentCounts(posts); err != nil {
		return nil, err
	}

	following := false
	if viewerID != 0 && viewerID != author.ID {
		following, err = f.store.IsFollowing(viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileFeed{
		Author:    author,
		Page:      pagination.NewPage(posts, number, totalPages),
		PostCount: total,
		Following: following,
	}, nil
}

// Following returns one page of posts by the authors the user follows.
// Callers guarantee an authenticated principal.
func (f *Composer) Following(userID uint, page int) (*pagination.Page, error) {
	total, err := f.store.CountPostsByFollowed(userID)
	if err != nil {
		return nil, err
	}
	number, totalPages, offset := pagination.Clamp(page, total)
	posts, err := f.store.PostsByFollowed(userID, offset, pagination.PerPage)
	if err != nil {
		return nil, err
	}
	if err := f.store.FillCommentCounts(posts); err != nil {
		return nil, err
	}
	return pagination.NewPage(posts, number, totalPages), nil
}
