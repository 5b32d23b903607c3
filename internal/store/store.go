package store

import (
	"errors"
	"yatube/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no record. It wraps
// gorm.ErrRecordNotFound so errors.Is works on either sentinel.
var ErrNotFound = gorm.ErrRecordNotFound

// Store wraps the gorm handle and owns every query of the application.
// Cascade and set-null behavior on deletes is implemented here explicitly
// instead of relying on database foreign keys, so the contract holds on any
// backend.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and seeding.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ----- Users -----

func (s *Store) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *Store) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user together with their posts (and the comments on
// those posts), their comments elsewhere, and both directions of follow
// edges. User deletion is owned by the auth subsystem; this is the cascade
// contract it calls into.
func (s *Store) DeleteUser(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// ----- Groups -----

func (s *Store) CreateGroup(group *models.Group) error {
	return s.db.Create(group).Error
}

func (s *Store) Groups() ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Order("title ASC").Find(&groups).Error
	return groups, err
}

func (s *Store) GroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *Store) GroupBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup ungroups every post referencing the group before removing it.
// Posts survive with group = null.
func (s *Store) DeleteGroup(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, id).Error
	})
}

// ----- Posts -----

func (s *Store) CreatePost(post *models.Post) error {
	return s.db.Create(post).Error
}

func (s *Store) PostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost rewrites the mutable columns only. Author and publication date
// never change after creation.
func (s *Store) UpdatePost(id uint, text string, groupID *uint, image string) error {
	updates := map[string]interface{}{
		"text":     text,
		"group_id": groupID,
	}
	if image != "" {
		updates["image"] = image
	}
	res := s.db.Model(&models.Post{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost cascades to the post's comments.
func (s *Store) DeletePost(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (s *Store) postFeed() *gorm.DB {
	return s.db.Preload("Author").Preload("Group").Order(models.PostOrder)
}

func (s *Store) Posts(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.postFeed().Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (s *Store) CountPosts() (int64, error) {
	var total int64
	err := s.db.Model(&models.Post{}).Count(&total).Error
	return total, err
}

func (s *Store) PostsByGroup(groupID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.postFeed().Where("group_id = ?", groupID).Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (s *Store) CountPostsByGroup(groupID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.Post{}).Where("group_id = ?", groupID).Count(&total).Error
	return total, err
}

func (s *Store) PostsByAuthor(authorID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.postFeed().Where("author_id = ?", authorID).Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (s *Store) CountPostsByAuthor(authorID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&total).Error
	return total, err
}

func (s *Store) followedAuthors(userID uint) *gorm.DB {
	return s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
}

// PostsByFollowed returns posts whose author the user follows.
func (s *Store) PostsByFollowed(userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.postFeed().Where("author_id IN (?)", s.followedAuthors(userID)).
		Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (s *Store) CountPostsByFollowed(userID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.Post{}).Where("author_id IN (?)", s.followedAuthors(userID)).Count(&total).Error
	return total, err
}

// FillCommentCounts 批量填充帖子的评论数量.
func (s *Store) FillCommentCounts(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := s.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

// ----- Comments -----

func (s *Store) CreateComment(comment *models.Comment) error {
	return s.db.Create(comment).Error
}

func (s *Store) CommentsByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("Author").Where("post_id = ?", postID).
		Order(models.CommentOrder).Find(&comments).Error
	return comments, err
}

func (s *Store) CountCommentsByPost(postID uint) (int64, error) {
	var total int64
	err := s.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error
	return total, err
}

// ----- Follows -----

// Follow creates the user→author edge if it does not exist yet. Calling it
// twice leaves exactly one edge.
func (s *Store) Follow(userID, authorID uint) error {
	var follow models.Follow
	return s.db.FirstOrCreate(&follow, models.Follow{UserID: userID, AuthorID: authorID}).Error
}

// Unfollow removes the edge, ErrNotFound when it never existed.
func (s *Store) Unfollow(userID, authorID uint) error {
	res := s.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) IsFollowing(userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error
	return count > 0, err
}

func (s *Store) CountFollows() (int64, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).Count(&count).Error
	return count, err
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
