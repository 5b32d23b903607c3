package models

// Group 社区 - created and edited by admin tooling only, never from
// application handlers.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}
