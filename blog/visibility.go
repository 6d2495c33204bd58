package blog

import (
	"time"

	"gorm.io/gorm"

	"blogium/models"
)

// Publication rule for everyone except the author: the post is published,
// its publish time has passed, and its category (when set) is published.
// A post without a category behaves like a post without a location: the
// missing relation does not hide it.
const visibleCond = "posts.is_published = ? AND posts.pub_date <= ? AND (posts.category_id IS NULL OR categories.is_published = ?)"

// IsVisible reports whether the viewer may see the post. The author always
// sees their own posts, published or not, scheduled or not.
func IsVisible(post *models.Post, viewerID uint, now time.Time) bool {
	if viewerID != 0 && post.AuthorID == viewerID {
		return true
	}
	if !post.IsPublished || post.PubDate.After(now) {
		return false
	}
	if post.CategoryID != nil {
		return post.Category != nil && post.Category.IsPublished
	}
	return true
}

// OwnedBy reports whether the viewer is the author of an entity.
func OwnedBy(authorID, viewerID uint) bool {
	return viewerID != 0 && authorID == viewerID
}

// VisibleScope narrows a posts query down to what an anonymous visitor may
// see. The query must select from the posts table.
func VisibleScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where(visibleCond, true, now, true)
	}
}

// visibleTo applies the publication rule to a listing query that already
// joins categories. A logged-in viewer additionally sees their own posts.
func visibleTo(q *gorm.DB, viewerID uint, now time.Time) *gorm.DB {
	if viewerID != 0 {
		return q.Where("posts.author_id = ? OR ("+visibleCond+")", viewerID, true, now, true)
	}
	return q.Where(visibleCond, true, now, true)
}
