package blog

import (
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogium/auth"
	"blogium/cache"
	"blogium/models"
)

const uploadsDir = "public/uploads"

type postForm struct {
	Title      string
	Text       string
	PubDate    time.Time
	CategoryID *uint
	LocationID *uint
	Image      string
}

// parsePostForm reads the shared create/edit form. Returns a user-facing
// error message when the submission is invalid.
func (b *BlogModule) parsePostForm(c *gin.Context) (postForm, string) {
	var form postForm

	form.Title = strings.TrimSpace(c.PostForm("title"))
	form.Text = c.PostForm("text")
	if form.Title == "" || form.Text == "" {
		return form, "Title and text are required"
	}

	form.PubDate = time.Now()
	if raw := c.PostForm("pub_date"); raw != "" {
		// datetime-local input format
		t, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
		if err != nil {
			return form, "Invalid publication date"
		}
		form.PubDate = t
	}

	if raw := c.PostForm("category"); raw != "" && raw != "0" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return form, "Invalid category"
		}
		var category models.Category
		if err := b.db.First(&category, id).Error; err != nil {
			return form, "Invalid category"
		}
		form.CategoryID = &category.ID
	}

	if raw := c.PostForm("location"); raw != "" && raw != "0" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return form, "Invalid location"
		}
		var location models.Location
		if err := b.db.First(&location, id).Error; err != nil {
			return form, "Invalid location"
		}
		form.LocationID = &location.ID
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		name, err := b.saveImage(c, file)
		if err != nil {
			return form, "Error saving image"
		}
		form.Image = name
	}

	return form, ""
}

func (b *BlogModule) saveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadsDir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// formChoices loads the published categories and locations for the selects.
func (b *BlogModule) formChoices() ([]models.Category, []models.Location) {
	var categories []models.Category
	b.db.Where("is_published = ?", true).Order("title").Find(&categories)

	var locations []models.Location
	b.db.Where("is_published = ?", true).Order("name").Find(&locations)

	return categories, locations
}

func postDetailURL(postID uint) string {
	return fmt.Sprintf("/posts/%d", postID)
}

func (b *BlogModule) detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	var post models.Post
	if err := b.db.Preload("Author").Preload("Category").Preload("Location").
		First(&post, id).Error; err != nil {
		b.notFound(c)
		return
	}

	viewer := auth.CurrentUser(c)
	if !IsVisible(&post, viewerIDOf(viewer), time.Now()) {
		b.notFound(c)
		return
	}

	var comments []models.Comment
	if err := b.db.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	b.analytics.TrackVisit(c, post.ID)
	visits := b.analytics.CountVisits(post.ID)

	c.HTML(http.StatusOK, "blog_detail.html", gin.H{
		"post":     post,
		"postHTML": template.HTML(renderMarkdown(post.Text)),
		"comments": comments,
		"viewer":   viewer,
		"isAuthor": viewer != nil && OwnedBy(post.AuthorID, viewer.ID),
		"visits":   visits,
	})
}

func (b *BlogModule) newPost(c *gin.Context) {
	categories, locations := b.formChoices()

	c.HTML(http.StatusOK, "blog_post_form.html", gin.H{
		"action":     "/posts/create",
		"categories": categories,
		"locations":  locations,
	})
}

func (b *BlogModule) createPost(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	form, errMsg := b.parsePostForm(c)
	if errMsg != "" {
		categories, locations := b.formChoices()
		c.HTML(http.StatusBadRequest, "blog_post_form.html", gin.H{
			"action":     "/posts/create",
			"error":      errMsg,
			"title":      form.Title,
			"text":       form.Text,
			"categories": categories,
			"locations":  locations,
		})
		return
	}

	post := models.Post{
		Title:       form.Title,
		Text:        form.Text,
		Image:       form.Image,
		PubDate:     form.PubDate,
		IsPublished: true,
		AuthorID:    user.ID,
		CategoryID:  form.CategoryID,
		LocationID:  form.LocationID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := b.db.Create(&post).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

// getPostForMutation fetches the post for an edit/delete request. A missing
// post is a 404; someone else's post sends the viewer to the detail page
// without an error.
func (b *BlogModule) getPostForMutation(c *gin.Context, user *models.User) (*models.Post, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return nil, false
	}

	var post models.Post
	if err := b.db.First(&post, id).Error; err != nil {
		b.notFound(c)
		return nil, false
	}

	if !OwnedBy(post.AuthorID, user.ID) {
		c.Redirect(http.StatusFound, postDetailURL(post.ID))
		c.Abort()
		return nil, false
	}

	return &post, true
}

func (b *BlogModule) editPostPage(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, ok := b.getPostForMutation(c, user)
	if !ok {
		return
	}

	categories, locations := b.formChoices()
	c.HTML(http.StatusOK, "blog_post_form.html", gin.H{
		"action":     postDetailURL(post.ID) + "/edit",
		"post":       post,
		"title":      post.Title,
		"text":       post.Text,
		"categories": categories,
		"locations":  locations,
	})
}

func (b *BlogModule) updatePost(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, ok := b.getPostForMutation(c, user)
	if !ok {
		return
	}

	form, errMsg := b.parsePostForm(c)
	if errMsg != "" {
		categories, locations := b.formChoices()
		c.HTML(http.StatusBadRequest, "blog_post_form.html", gin.H{
			"action":     postDetailURL(post.ID) + "/edit",
			"error":      errMsg,
			"post":       post,
			"title":      form.Title,
			"text":       form.Text,
			"categories": categories,
			"locations":  locations,
		})
		return
	}

	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = form.PubDate
	post.CategoryID = form.CategoryID
	post.LocationID = form.LocationID
	if form.Image != "" {
		post.Image = form.Image
	}
	post.UpdatedAt = time.Now()

	if err := b.db.Save(post).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	cache.ClearPost(post.ID)
	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

func (b *BlogModule) deletePost(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	post, ok := b.getPostForMutation(c, user)
	if !ok {
		return
	}

	// Comments go with the post
	if err := b.db.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}
	if err := b.db.Delete(post).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	cache.ClearPost(post.ID)
	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}
