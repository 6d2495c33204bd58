package blog

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"blogium/models"
)

func TestPostMutations_RequireLogin(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	form := url.Values{}
	form.Set("title", "Title")
	form.Set("text", "Text")

	w := doRequest(router, "POST", "/posts/create", form, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestCreatePost(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	user := createTestUser(db, "author")
	category := createTestCategory(db, "go", true)
	cookies := loginAs(t, router, user.ID)

	form := url.Values{}
	form.Set("title", "My first post")
	form.Set("text", "Hello **world**")
	form.Set("pub_date", time.Now().Add(-time.Hour).Format("2006-01-02T15:04"))
	form.Set("category", fmt.Sprintf("%d", category.ID))

	w := doRequest(router, "POST", "/posts/create", form, cookies)

	assert.Equal(t, http.StatusFound, w.Code)

	var post models.Post
	assert.NoError(t, db.Where("title = ?", "My first post").First(&post).Error)
	assert.Equal(t, user.ID, post.AuthorID)
	assert.True(t, post.IsPublished)
	assert.NotNil(t, post.CategoryID)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), w.Header().Get("Location"))
}

func TestCreatePost_MissingTitleRedisplaysForm(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	user := createTestUser(db, "author")
	cookies := loginAs(t, router, user.ID)

	form := url.Values{}
	form.Set("text", "Body without a title")

	w := doRequest(router, "POST", "/posts/create", form, cookies)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEditPost_NonAuthorSilentlyRedirected(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	author := createTestUser(db, "author")
	intruder := createTestUser(db, "intruder")
	post := createTestPost(db, author.ID, nil, true, time.Now().Add(-time.Hour))

	cookies := loginAs(t, router, intruder.ID)

	form := url.Values{}
	form.Set("title", "Hijacked")
	form.Set("text", "Hijacked body")

	w := doRequest(router, "POST", fmt.Sprintf("/posts/%d/edit", post.ID), form, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), w.Header().Get("Location"))

	var unchanged models.Post
	db.First(&unchanged, post.ID)
	assert.Equal(t, "Test Post", unchanged.Title)
}

func TestEditPost_AuthorUpdates(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	author := createTestUser(db, "author")
	post := createTestPost(db, author.ID, nil, true, time.Now().Add(-time.Hour))

	cookies := loginAs(t, router, author.ID)

	form := url.Values{}
	form.Set("title", "Updated title")
	form.Set("text", "Updated body")

	w := doRequest(router, "POST", fmt.Sprintf("/posts/%d/edit", post.ID), form, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), w.Header().Get("Location"))

	var updated models.Post
	db.First(&updated, post.ID)
	assert.Equal(t, "Updated title", updated.Title)
	assert.Equal(t, "Updated body", updated.Text)
}

func TestEditPost_MissingPostIs404(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	user := createTestUser(db, "author")
	cookies := loginAs(t, router, user.ID)

	form := url.Values{}
	form.Set("title", "Title")
	form.Set("text", "Text")

	w := doRequest(router, "POST", "/posts/999/edit", form, cookies)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePost_NonAuthorSilentlyRedirected(t *testing.T) {
	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	author := createTestUser(db, "author")
	intruder := createTestUser(db, "intruder")
	post := createTestPost(db, author.ID, nil, true, time.Now().Add(-time.Hour))

	cookies := loginAs(t, router, intruder.ID)

	w := doRequest(router, "POST", fmt.Sprintf("/posts/%d/delete", post.ID), nil, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), w.Header().Get("Location"))

	var still models.Post
	assert.NoError(t, db.First(&still, post.ID).Error)
}

func TestDeletePost_CascadesComments(t *testing.T) {
	useTempWorkdir(t)

	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	author := createTestUser(db, "author")
	commenter := createTestUser(db, "commenter")
	post := createTestPost(db, author.ID, nil, true, time.Now().Add(-time.Hour))
	createTestComment(db, post.ID, commenter.ID, "first")
	createTestComment(db, post.ID, commenter.ID, "second")

	cookies := loginAs(t, router, author.ID)

	w := doRequest(router, "POST", fmt.Sprintf("/posts/%d/delete", post.ID), nil, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/author", w.Header().Get("Location"))

	var postCount, commentCount int64
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(t, int64(0), postCount)
	assert.Equal(t, int64(0), commentCount)
}

func TestDetail_HiddenPostIs404ForStranger(t *testing.T) {
	useTempWorkdir(t)

	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	author := createTestUser(db, "author")
	post := createTestPost(db, author.ID, nil, false, time.Now().Add(-time.Hour))

	w := doRequest(router, "GET", fmt.Sprintf("/posts/%d", post.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the author still reaches their own hidden post
	cookies := loginAs(t, router, author.ID)
	w = doRequest(router, "GET", fmt.Sprintf("/posts/%d", post.ID), nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDetail_UnknownPostIs404(t *testing.T) {
	useTempWorkdir(t)

	db := setupTestDB()
	b := newTestModule(db)
	router := setupTestRouter(b)

	w := doRequest(router, "GET", "/posts/12345", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
