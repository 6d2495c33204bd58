package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"blogium/models"
)

// RequireAuth redirects anonymous visitors to the login page.
func (a *AuthModule) RequireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Next()
}

// LoadUser puts the logged-in user into the request context, if any.
// Handlers that work for anonymous visitors use this instead of RequireAuth.
func (a *AuthModule) LoadUser(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")
	if userID == nil {
		c.Next()
		return
	}

	uid, ok := userID.(uint)
	if !ok {
		c.Next()
		return
	}

	var user models.User
	if err := a.db.First(&user, uid).Error; err != nil {
		// Stale session pointing at a deleted user
		session.Clear()
		session.Save()
		c.Next()
		return
	}

	c.Set("current_user", &user)
	c.Next()
}

// CurrentUser returns the user loaded by LoadUser, or nil for anonymous visitors.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get("current_user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
