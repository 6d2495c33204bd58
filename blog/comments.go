package blog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"blogium/auth"
	"blogium/cache"
	"blogium/models"
)

func (b *BlogModule) addComment(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return
	}

	var post models.Post
	if err := b.db.First(&post, id).Error; err != nil {
		b.notFound(c)
		return
	}

	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		c.Redirect(http.StatusFound, postDetailURL(post.ID))
		return
	}

	comment := models.Comment{
		Text:      text,
		AuthorID:  user.ID,
		PostID:    post.ID,
		CreatedAt: time.Now(),
	}

	if err := b.db.Create(&comment).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	cache.ClearPost(post.ID)
	c.Redirect(http.StatusFound, postDetailURL(post.ID))
}

// getOwnComment fetches the comment for an edit/delete request. Unlike post
// mutations, a wrong post, wrong author or missing comment is a plain 404.
func (b *BlogModule) getOwnComment(c *gin.Context, user *models.User) (*models.Comment, bool) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		b.notFound(c)
		return nil, false
	}
	commentID, err := strconv.Atoi(c.Param("comment_id"))
	if err != nil {
		b.notFound(c)
		return nil, false
	}

	var comment models.Comment
	if err := b.db.Where("id = ? AND post_id = ? AND author_id = ?",
		commentID, postID, user.ID).First(&comment).Error; err != nil {
		b.notFound(c)
		return nil, false
	}

	return &comment, true
}

func (b *BlogModule) editCommentPage(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	comment, ok := b.getOwnComment(c, user)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "blog_comment_edit.html", gin.H{
		"comment": comment,
	})
}

func (b *BlogModule) updateComment(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	comment, ok := b.getOwnComment(c, user)
	if !ok {
		return
	}

	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		c.HTML(http.StatusBadRequest, "blog_comment_edit.html", gin.H{
			"comment": comment,
			"error":   "Comment text is required",
		})
		return
	}

	comment.Text = text
	if err := b.db.Save(comment).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	cache.ClearPost(comment.PostID)
	c.Redirect(http.StatusFound, postDetailURL(comment.PostID))
}

func (b *BlogModule) deleteComment(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	comment, ok := b.getOwnComment(c, user)
	if !ok {
		return
	}

	if err := b.db.Delete(comment).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
		return
	}

	cache.ClearPost(comment.PostID)
	c.Redirect(http.StatusFound, postDetailURL(comment.PostID))
}
