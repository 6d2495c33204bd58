package blog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blogium/analytics"
	"blogium/auth"
	"blogium/cache"
	"blogium/models"
)

const postsPerPage = 10

type BlogModule struct {
	db        *gorm.DB
	auth      *auth.AuthModule
	analytics *analytics.AnalyticsModule
}

func NewBlogModule(db *gorm.DB, authModule *auth.AuthModule, analyticsModule *analytics.AnalyticsModule) *BlogModule {
	return &BlogModule{
		db:        db,
		auth:      authModule,
		analytics: analyticsModule,
	}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	load := b.auth.LoadUser
	authed := b.auth.RequireAuth

	router.GET("/", load, b.index)
	router.GET("/category/:slug", load, b.category)
	router.GET("/profile/edit", authed, load, b.editProfilePage)
	router.POST("/profile/edit", authed, load, b.updateProfile)
	router.GET("/profile/:username", load, b.profile)

	posts := router.Group("/posts")
	{
		posts.GET("/create", authed, load, b.newPost)
		posts.POST("/create", authed, load, b.createPost)
		posts.GET("/:id", load, cache.PostPageMiddleware(10*time.Minute), b.detail)
		posts.GET("/:id/edit", authed, load, b.editPostPage)
		posts.POST("/:id/edit", authed, load, b.updatePost)
		posts.POST("/:id/delete", authed, load, b.deletePost)
		posts.POST("/:id/comment", authed, load, b.addComment)
		posts.GET("/:id/edit_comment/:comment_id", authed, load, b.editCommentPage)
		posts.POST("/:id/edit_comment/:comment_id", authed, load, b.updateComment)
		posts.POST("/:id/delete_comment/:comment_id", authed, load, b.deleteComment)
	}
}

// PostRow is a listing row: a post plus the columns the list templates need,
// including the derived comment count.
type PostRow struct {
	models.Post
	AuthorUsername string
	CategoryTitle  string
	CategorySlug   string
	CommentCount   int64
}

func (b *BlogModule) postsQuery() *gorm.DB {
	return b.db.Table("posts").
		Select(`posts.*,
			users.username AS author_username,
			categories.title AS category_title,
			categories.slug AS category_slug,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count`).
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN categories ON categories.id = posts.category_id")
}

// fetchPage runs a listing query with the shared ordering and pagination.
// Ties on pub_date fall back to id so pages stay stable.
func fetchPage(q *gorm.DB, page int) ([]PostRow, int64, error) {
	if page < 1 {
		page = 1
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []PostRow
	err := q.Order("posts.pub_date DESC, posts.id DESC").
		Limit(postsPerPage).
		Offset((page - 1) * postsPerPage).
		Find(&rows).Error
	return rows, total, err
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func totalPages(total int64) int {
	pages := int((total + postsPerPage - 1) / postsPerPage)
	if pages < 1 {
		pages = 1
	}
	return pages
}

func viewerIDOf(user *models.User) uint {
	if user == nil {
		return 0
	}
	return user.ID
}

func (b *BlogModule) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "pages_404.html", gin.H{})
	c.Abort()
}

func (b *BlogModule) index(c *gin.Context) {
	viewer := auth.CurrentUser(c)
	page := pageParam(c)

	q := visibleTo(b.postsQuery(), viewerIDOf(viewer), time.Now())
	rows, total, err := fetchPage(q, page)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "blog_index.html", gin.H{
		"posts":      rows,
		"page":       page,
		"totalPages": totalPages(total),
		"viewer":     viewer,
	})
}

func (b *BlogModule) category(c *gin.Context) {
	slug := c.Param("slug")
	viewer := auth.CurrentUser(c)
	page := pageParam(c)

	var category models.Category
	if err := b.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		b.notFound(c)
		return
	}

	q := visibleTo(b.postsQuery(), viewerIDOf(viewer), time.Now()).
		Where("posts.category_id = ?", category.ID)
	rows, total, err := fetchPage(q, page)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "blog_category.html", gin.H{
		"category":   category,
		"posts":      rows,
		"page":       page,
		"totalPages": totalPages(total),
		"viewer":     viewer,
	})
}

func (b *BlogModule) profile(c *gin.Context) {
	username := c.Param("username")
	viewer := auth.CurrentUser(c)
	page := pageParam(c)

	var profile models.User
	if err := b.db.Where("username = ?", username).First(&profile).Error; err != nil {
		b.notFound(c)
		return
	}

	q := b.postsQuery().Where("posts.author_id = ?", profile.ID)
	if viewer == nil || viewer.ID != profile.ID {
		// Only the owner sees their unpublished and scheduled posts
		q = visibleTo(q, viewerIDOf(viewer), time.Now())
	}
	rows, total, err := fetchPage(q, page)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "blog_profile.html", gin.H{
		"profile":    profile,
		"posts":      rows,
		"page":       page,
		"totalPages": totalPages(total),
		"viewer":     viewer,
		"isOwner":    viewer != nil && viewer.ID == profile.ID,
	})
}

func (b *BlogModule) editProfilePage(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "blog_profile_edit.html", gin.H{
		"user": user,
	})
}

func (b *BlogModule) updateProfile(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	username := c.PostForm("username")
	firstName := c.PostForm("first_name")
	lastName := c.PostForm("last_name")
	email := c.PostForm("email")

	formData := gin.H{"user": user}

	if username == "" || email == "" {
		formData["error"] = "Username and email are required"
		c.HTML(http.StatusBadRequest, "blog_profile_edit.html", formData)
		return
	}

	if username != user.Username {
		var existing models.User
		if err := b.db.Where("username = ?", username).First(&existing).Error; err == nil {
			formData["error"] = "This username is already taken"
			c.HTML(http.StatusBadRequest, "blog_profile_edit.html", formData)
			return
		}
	}

	if email != user.Email {
		var existing models.User
		if err := b.db.Where("email = ?", email).First(&existing).Error; err == nil {
			formData["error"] = "This email is already registered"
			c.HTML(http.StatusBadRequest, "blog_profile_edit.html", formData)
			return
		}
	}

	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email

	if err := b.db.Save(user).Error; err != nil {
		formData["error"] = "Error saving profile"
		c.HTML(http.StatusInternalServerError, "blog_profile_edit.html", formData)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}
