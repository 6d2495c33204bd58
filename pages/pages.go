package pages

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blogium/blog"
	"blogium/models"
)

type PagesModule struct {
	db *gorm.DB
}

func NewPagesModule(db *gorm.DB) *PagesModule {
	return &PagesModule{db: db}
}

func (p *PagesModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/sitemap.xml", p.sitemap)
	router.NoRoute(p.NotFound)
}

// NotFound renders the standard 404 page.
func (p *PagesModule) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "pages_404.html", gin.H{})
}

// InternalError renders the standard 500 page; wired into gin's recovery.
func InternalError(c *gin.Context, _ any) {
	c.HTML(http.StatusInternalServerError, "pages_500.html", gin.H{})
}

func (p *PagesModule) sitemap(c *gin.Context) {
	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "http://localhost:8080"
	}
	domain = strings.TrimSuffix(domain, "/")

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	sitemap.WriteString("  <url>\n")
	sitemap.WriteString("    <loc>" + domain + "/</loc>\n")
	sitemap.WriteString("    <changefreq>daily</changefreq>\n")
	sitemap.WriteString("    <priority>1.0</priority>\n")
	sitemap.WriteString("  </url>\n")

	var categories []models.Category
	p.db.Where("is_published = ?", true).Find(&categories)

	for _, category := range categories {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + domain + "/category/" + category.Slug + "/</loc>\n")
		sitemap.WriteString("    <changefreq>daily</changefreq>\n")
		sitemap.WriteString("    <priority>0.8</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	// Only posts an anonymous visitor may see belong in the sitemap
	var posts []models.Post
	p.db.Table("posts").Select("posts.*").
		Scopes(blog.VisibleScope(time.Now())).
		Find(&posts)

	for _, post := range posts {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + domain + "/posts/" + strconv.FormatUint(uint64(post.ID), 10) + "/</loc>\n")
		sitemap.WriteString("    <lastmod>" + post.UpdatedAt.Format(time.RFC3339) + "</lastmod>\n")
		sitemap.WriteString("    <changefreq>monthly</changefreq>\n")
		sitemap.WriteString("    <priority>0.6</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	sitemap.WriteString("</urlset>\n")

	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(sitemap.String()))
}
