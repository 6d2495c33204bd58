package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostEvent records a visit to a post detail page
type PostEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	PostID    uint      `gorm:"not null;index"`
	CookieID  string    `gorm:"not null;index"`
	IP        string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsModule tracks post visits in a separate database
type AnalyticsModule struct {
	db *gorm.DB
}

func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		log.Println("Analytics DB is nil, analytics will be disabled")
		return nil
	}

	if err := db.AutoMigrate(&PostEvent{}); err != nil {
		log.Printf("Error migrating post_events table: %v", err)
		return nil
	}

	log.Println("Analytics module initialized successfully")
	return &AnalyticsModule{db: db}
}

// TrackVisit records a visit to a post. Repeated refreshes are throttled:
// nothing is recorded when the same visitor hit the same post in the last
// 30 minutes.
func (a *AnalyticsModule) TrackVisit(c *gin.Context, postID uint) {
	if a == nil || a.db == nil {
		return // analytics disabled
	}

	cookieID := a.getOrCreateCookieID(c)

	thirtyMinutesAgo := time.Now().Add(-30 * time.Minute)
	var recentVisit PostEvent
	if err := a.db.Where("cookie_id = ? AND post_id = ? AND created_at > ?",
		cookieID, postID, thirtyMinutesAgo).First(&recentVisit).Error; err == nil {
		return
	}

	event := PostEvent{
		PostID:    postID,
		CookieID:  cookieID,
		IP:        c.ClientIP(),
		CreatedAt: time.Now(),
	}
	if err := a.db.Create(&event).Error; err != nil {
		log.Printf("Error recording post visit: %v", err)
	}
}

// CountVisits returns the total recorded visits for a post.
func (a *AnalyticsModule) CountVisits(postID uint) int64 {
	if a == nil || a.db == nil {
		return 0
	}

	var count int64
	a.db.Model(&PostEvent{}).Where("post_id = ?", postID).Count(&count)
	return count
}

// getOrCreateCookieID identifies a unique visitor across requests
func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	if id, err := c.Cookie("visitor_id"); err == nil && id != "" {
		return id
	}

	buf := make([]byte, 16)
	rand.Read(buf)
	sum := sha256.Sum256(buf)
	id := hex.EncodeToString(sum[:])[:32]

	c.SetCookie("visitor_id", id, 3600*24*365, "/", "", false, true)
	return id
}
