package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"yatube/internal/feed"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
)

// titleRunes is how much of the post text becomes the detail page title.
const titleRunes = 30

type PostHandler struct {
	store   *store.Store
	feed    *feed.Composer
	storage services.ImageStorage
}

func NewPostHandler(s *store.Store, f *feed.Composer, storage services.ImageStorage) *PostHandler {
	return &PostHandler{store: s, feed: f, storage: storage}
}

// Index 全站时间线 - the only cached view, see middleware.CachePage.
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.feed.Global(utils.StringToInt(c.Query("page")))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load the timeline")
		return
	}

	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Title": "Latest posts",
		"Page":  page,
	})
}

// GroupPosts shows one community's timeline, 404 on unknown slug.
func (h *PostHandler) GroupPosts(c *gin.Context) {
	group, page, err := h.feed.Group(c.Param("slug"), utils.StringToInt(c.Query("page")))
	if err != nil {
		if store.IsNotFound(err) {
			RenderError(c, http.StatusNotFound, "Group not found")
		} else {
			RenderError(c, http.StatusInternalServerError, "Failed to load the group timeline")
		}
		return
	}

	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Title": group.Title,
		"Group": group,
		"Page":  page,
	})
}

// Profile shows an author's timeline with the viewer's follow state.
func (h *PostHandler) Profile(c *gin.Context) {
	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	profile, err := h.feed.Profile(c.Param("username"), viewerID, utils.StringToInt(c.Query("page")))
	if err != nil {
		if store.IsNotFound(err) {
			RenderError(c, http.StatusNotFound, "User not found")
		} else {
			RenderError(c, http.StatusInternalServerError, "Failed to load the profile")
		}
		return
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Title":     profile.Author.Username,
		"Author":    profile.Author,
		"Page":      profile.Page,
		"PostCount": profile.PostCount,
		"Following": profile.Following,
		"IsSelf":    viewerID == profile.Author.ID,
	})
}

type renderedComment struct {
	models.Comment
	TextHTML template.HTML
}

// Detail shows a single post with its comment thread and comment form.
func (h *PostHandler) Detail(c *gin.Context) {
	post := h.findPost(c)
	if post == nil {
		return
	}

	comments, err := h.store.CommentsByPost(post.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	postCount, err := h.store.CountPostsByAuthor(post.AuthorID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load the post")
		return
	}

	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{Comment: com, TextHTML: utils.RenderMarkdown(com.Text)}
	}

	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Title":     truncateRunes(post.Text, titleRunes),
		"Post":      post,
		"PostHTML":  utils.RenderMarkdown(post.Text),
		"Comments":  rendered,
		"PostCount": postCount,
	})
}

// ShowCreate renders the new post form.
func (h *PostHandler) ShowCreate(c *gin.Context) {
	groups, _ := h.store.Groups()
	Render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"Title":         "New post",
		"Groups":        groups,
		"SelectedGroup": uint(0),
	})
}

// Create persists a new post. The author is always the requesting
// principal; nothing in the form can override that.
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	text, groupID, errMsg := h.bindPostForm(c)
	if errMsg == "" {
		if imagePath, imgErr := h.saveImage(c); imgErr != "" {
			errMsg = imgErr
		} else {
			post := models.Post{
				Text:     text,
				AuthorID: user.ID,
				GroupID:  groupID,
				Image:    imagePath,
			}
			if err := h.store.CreatePost(&post); err != nil {
				utils.Sugar.Errorw("create post failed", "author", user.ID, "err", err)
				errMsg = "Failed to publish the post"
			} else {
				c.Redirect(http.StatusFound, "/profile/"+user.Username)
				return
			}
		}
	}

	groups, _ := h.store.Groups()
	Render(c, http.StatusBadRequest, "posts/create_post.html", gin.H{
		"Title":         "New post",
		"Groups":        groups,
		"Error":         errMsg,
		"Text":          c.PostForm("text"),
		"SelectedGroup": uint(utils.StringToInt(c.PostForm("group"))),
	})
}

// ShowEdit renders the edit form. A non-author lands on the post detail
// page instead, without an error.
func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post := h.findPost(c)
	if post == nil {
		return
	}

	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		return
	}

	groups, _ := h.store.Groups()
	Render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"Title":         "Edit post",
		"Groups":        groups,
		"IsEdit":        true,
		"Post":          post,
		"Text":          post.Text,
		"SelectedGroup": derefGroup(post.GroupID),
	})
}

// Edit updates a post's text, group and image. Author and publication date
// stay untouched.
func (h *PostHandler) Edit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post := h.findPost(c)
	if post == nil {
		return
	}

	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		return
	}

	text, groupID, errMsg := h.bindPostForm(c)
	if errMsg == "" {
		if imagePath, imgErr := h.saveImage(c); imgErr != "" {
			errMsg = imgErr
		} else if err := h.store.UpdatePost(post.ID, text, groupID, imagePath); err != nil {
			utils.Sugar.Errorw("update post failed", "post", post.ID, "err", err)
			errMsg = "Failed to save the post"
		} else {
			c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
			return
		}
	}

	groups, _ := h.store.Groups()
	Render(c, http.StatusBadRequest, "posts/create_post.html", gin.H{
		"Title":         "Edit post",
		"Groups":        groups,
		"IsEdit":        true,
		"Post":          post,
		"Error":         errMsg,
		"Text":          c.PostForm("text"),
		"SelectedGroup": uint(utils.StringToInt(c.PostForm("group"))),
	})
}

// AddComment attaches a comment to an existing post. The comment author is
// forced to the requester.
func (h *PostHandler) AddComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post := h.findPost(c)
	if post == nil {
		return
	}

	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		comments, _ := h.store.CommentsByPost(post.ID)
		rendered := make([]renderedComment, len(comments))
		for i, com := range comments {
			rendered[i] = renderedComment{Comment: com, TextHTML: utils.RenderMarkdown(com.Text)}
		}
		postCount, _ := h.store.CountPostsByAuthor(post.AuthorID)
		Render(c, http.StatusBadRequest, "posts/post_detail.html", gin.H{
			"Title":        truncateRunes(post.Text, titleRunes),
			"Post":         post,
			"PostHTML":     utils.RenderMarkdown(post.Text),
			"Comments":     rendered,
			"PostCount":    postCount,
			"CommentError": "Comment text cannot be empty",
		})
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     text,
	}
	if err := h.store.CreateComment(&comment); err != nil {
		utils.Sugar.Errorw("create comment failed", "post", post.ID, "err", err)
		RenderError(c, http.StatusInternalServerError, "Failed to add the comment")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

// Delete removes the requester's own post together with its comments. The
// cached home timeline is deliberately left alone; it expires on its own.
func (h *PostHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post := h.findPost(c)
	if post == nil {
		return
	}

	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		return
	}

	if err := h.store.DeletePost(post.ID); err != nil {
		utils.Sugar.Errorw("delete post failed", "post", post.ID, "err", err)
		RenderError(c, http.StatusInternalServerError, "Failed to delete the post")
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}

// findPost resolves :id or renders the 404 page and returns nil.
func (h *PostHandler) findPost(c *gin.Context) *models.Post {
	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		RenderError(c, http.StatusNotFound, "Post not found")
		return nil
	}
	post, err := h.store.PostByID(uint(id))
	if err != nil {
		if store.IsNotFound(err) {
			RenderError(c, http.StatusNotFound, "Post not found")
		} else {
			RenderError(c, http.StatusInternalServerError, "Failed to load the post")
		}
		return nil
	}
	return post
}

// bindPostForm validates the shared create/edit form. A non-empty errMsg
// means validation failed and nothing may be persisted.
func (h *PostHandler) bindPostForm(c *gin.Context) (text string, groupID *uint, errMsg string) {
	text = strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		return "", nil, "Post text cannot be empty"
	}

	if v := c.PostForm("group"); v != "" {
		id := utils.StringToInt(v)
		if id <= 0 {
			return "", nil, "Unknown group"
		}
		group, err := h.store.GroupByID(uint(id))
		if err != nil {
			return "", nil, "Unknown group"
		}
		groupID = &group.ID
	}

	return text, groupID, ""
}

// saveImage stores an optional uploaded picture. Empty path when the form
// carried no file.
func (h *PostHandler) saveImage(c *gin.Context) (path, errMsg string) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return "", "" // no file attached
	}
	defer file.Close()

	path, err = h.storage.Save(file, header)
	if err != nil {
		utils.Sugar.Warnw("image upload rejected", "name", header.Filename, "err", err)
		return "", "Could not store the attached image"
	}
	return path, ""
}

func derefGroup(groupID *uint) uint {
	if groupID != nil {
		return *groupID
	}
	return 0
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
