package cache

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// PostPageMiddleware caches the post detail page for anonymous visitors.
// It must be mounted on a route with an :id parameter.
func PostPageMiddleware(maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		// Logged-in viewers may see unpublished content; never cache for them
		if sessions.Default(c).Get("user_id") != nil {
			c.Next()
			return
		}

		postID := c.Param("id")
		if postID == "" {
			c.Next()
			return
		}

		if cached, found := ReadPost(postID, maxAge); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		// Only cache successful HTML responses
		if c.Writer.Status() == http.StatusOK &&
			strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/html") {
			WritePost(postID, writer.body.String())
		}
	}
}
