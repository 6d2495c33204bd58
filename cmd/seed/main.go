package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"blogium/common"
	"blogium/database"
	"blogium/models"
)

// Seeds the configured database with demo users, categories, locations,
// posts and comments. Every user gets the password "password123".
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	gofakeit.Seed(time.Now().UnixNano())

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash seed password:", err)
	}

	var users []models.User
	for i := 0; i < 5; i++ {
		user := models.User{
			Username:      fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			FirstName:     gofakeit.FirstName(),
			LastName:      gofakeit.LastName(),
			Email:         fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			PasswordHash:  string(hash),
			EmailVerified: true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("Failed to create user:", err)
		}
		users = append(users, user)
	}

	var categories []models.Category
	for i := 0; i < 6; i++ {
		title := gofakeit.BuzzWord()
		category := models.Category{
			Title:       title,
			Slug:        fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(title, " ", "-")), i),
			Description: gofakeit.Sentence(12),
			IsPublished: i != 0, // keep one category hidden
		}
		if err := db.Create(&category).Error; err != nil {
			log.Fatal("Failed to create category:", err)
		}
		categories = append(categories, category)
	}

	var locations []models.Location
	for i := 0; i < 4; i++ {
		location := models.Location{
			Name:        gofakeit.City(),
			IsPublished: i != 0, // keep one location hidden
		}
		if err := db.Create(&location).Error; err != nil {
			log.Fatal("Failed to create location:", err)
		}
		locations = append(locations, location)
	}

	var posts []models.Post
	for i := 0; i < 40; i++ {
		pubDate := time.Now().AddDate(0, 0, gofakeit.Number(-30, 5))

		post := models.Post{
			Title:       gofakeit.Sentence(4),
			Text:        gofakeit.Paragraph(3, 4, 12, "\n\n"),
			PubDate:     pubDate,
			IsPublished: gofakeit.Number(0, 9) < 8, // most posts published
			AuthorID:    users[gofakeit.Number(0, len(users)-1)].ID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		// Most posts get a category, some stay uncategorized
		if gofakeit.Number(0, 9) < 8 {
			categoryID := categories[gofakeit.Number(0, len(categories)-1)].ID
			post.CategoryID = &categoryID
		}
		if gofakeit.Number(0, 9) < 6 {
			locationID := locations[gofakeit.Number(0, len(locations)-1)].ID
			post.LocationID = &locationID
		}

		if err := db.Create(&post).Error; err != nil {
			log.Fatal("Failed to create post:", err)
		}
		posts = append(posts, post)
	}

	commentCount := 0
	for _, post := range posts {
		n := gofakeit.Number(0, 6)
		for j := 0; j < n; j++ {
			comment := models.Comment{
				Text:      gofakeit.Sentence(10),
				AuthorID:  users[gofakeit.Number(0, len(users)-1)].ID,
				PostID:    post.ID,
				CreatedAt: time.Now().Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour),
			}
			if err := db.Create(&comment).Error; err != nil {
				log.Fatal("Failed to create comment:", err)
			}
			commentCount++
		}
	}

	log.Printf("Seeded %d users, %d categories, %d locations, %d posts, %d comments",
		len(users), len(categories), len(locations), len(posts), commentCount)
}
