package handlers

import (
	"net/http"
	"yatube/internal/feed"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/store"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	store *store.Store
	feed  *feed.Composer
}

func NewFollowHandler(s *store.Store, f *feed.Composer) *FollowHandler {
	return &FollowHandler{store: s, feed: f}
}

// Index 订阅时间线 - posts by every author the principal follows.
func (h *FollowHandler) Index(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	page, err := h.feed.Following(user.ID, utils.StringToInt(c.Query("page")))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load the feed")
		return
	}

	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Title": "Your feed",
		"Page":  page,
	})
}

// Follow creates the edge to the profile's author. Idempotent; following
// yourself is a silent no-op.
func (h *FollowHandler) Follow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	author, err := h.store.UserByUsername(c.Param("username"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return
	}

	if author.ID != user.ID {
		if err := h.store.Follow(user.ID, author.ID); err != nil {
			utils.Sugar.Errorw("follow failed", "user", user.ID, "author", author.ID, "err", err)
			RenderError(c, http.StatusInternalServerError, "Failed to follow")
			return
		}
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username)
}

// Unfollow removes the edge, 404 when it does not exist.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	author, err := h.store.UserByUsername(c.Param("username"))
	if err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return
	}

	if err := h.store.Unfollow(user.ID, author.ID); err != nil {
		if store.IsNotFound(err) {
			RenderError(c, http.StatusNotFound, "You are not following this author")
		} else {
			utils.Sugar.Errorw("unfollow failed", "user", user.ID, "author", author.ID, "err", err)
			RenderError(c, http.StatusInternalServerError, "Failed to unfollow")
		}
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username)
}
