package models

import "time"

type User struct {
	ID                     uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Username               string `gorm:"unique;not null;index" json:"username"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Email                  string `gorm:"unique;not null" json:"email"`
	PasswordHash           string `gorm:"not null" json:"-"` // json:"-" prevents password from being exposed in API
	EmailVerified          bool   `gorm:"default:false" json:"email_verified"`
	EmailVerificationToken string `json:"-"` // token for email verification
}

type Category struct {
	ID          uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"unique;not null;index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	IsPublished bool   `gorm:"default:true;index" json:"is_published"`
}

type Location struct {
	ID          uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	IsPublished bool   `gorm:"default:true" json:"is_published"`
}

type Post struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"not null" json:"title"`
	Text        string    `gorm:"type:text" json:"text"`
	Image       string    `json:"image,omitempty"` // stored filename under public/uploads
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	IsPublished bool      `gorm:"default:true;index" json:"is_published"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Category    *Category `json:"category,omitempty"`
	LocationID  *uint     `json:"location_id,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

type Comment struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `json:"author"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
}
