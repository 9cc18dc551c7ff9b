package model

import "time"

type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"column:author_id;size:36;index" json:"authorId"`
	Title     string    `gorm:"column:title;size:255" json:"title"`
	Published bool      `gorm:"column:published;index" json:"published"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (Post) TableName() string { return "posts" }

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"column:post_id;size:36;index" json:"postId"`
	AuthorID  string    `gorm:"column:author_id;size:36" json:"authorId"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (Comment) TableName() string { return "comments" }

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:name;size:100" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Category) TableName() string { return "categories" }
