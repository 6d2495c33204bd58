package auth

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	emailpkg "blogium/email"
	"blogium/models"
)

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/signup", a.signupPage)
	router.POST("/signup", a.signupPost)
	router.GET("/confirm/:token", a.confirmEmail)
	router.GET("/logout", a.logout)
}

func (a *AuthModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "auth_login.html", gin.H{})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error":    "Incorrect username or password",
			"username": username,
		})
		return
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error":    "Incorrect username or password",
			"username": username,
		})
		return
	}

	if !user.EmailVerified {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error":    "Email not verified. Please check your inbox and confirm your email.",
			"username": username,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}

func (a *AuthModule) signupPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "auth_signup.html", gin.H{})
}

func (a *AuthModule) signupPost(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	firstName := c.PostForm("first_name")
	lastName := c.PostForm("last_name")

	// Data to re-render the form on error (never echo the password back)
	formData := gin.H{
		"username":   username,
		"email":      email,
		"first_name": firstName,
		"last_name":  lastName,
	}

	if username == "" || email == "" || password == "" {
		formData["error"] = "Username, email and password are required"
		c.HTML(http.StatusBadRequest, "auth_signup.html", formData)
		return
	}

	var existingUser models.User
	if err := a.db.Where("username = ?", username).First(&existingUser).Error; err == nil {
		formData["error"] = "This username is already taken"
		c.HTML(http.StatusBadRequest, "auth_signup.html", formData)
		return
	}

	if err := a.db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		formData["error"] = "This email is already registered"
		c.HTML(http.StatusBadRequest, "auth_signup.html", formData)
		return
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		formData["error"] = "Error creating account"
		c.HTML(http.StatusInternalServerError, "auth_signup.html", formData)
		return
	}

	verificationToken, err := generateToken()
	if err != nil {
		formData["error"] = "Error generating verification token"
		c.HTML(http.StatusInternalServerError, "auth_signup.html", formData)
		return
	}

	user := models.User{
		Username:               username,
		Email:                  email,
		FirstName:              firstName,
		LastName:               lastName,
		PasswordHash:           passwordHash,
		EmailVerified:          false,
		EmailVerificationToken: verificationToken,
	}

	if err := a.db.Create(&user).Error; err != nil {
		formData["error"] = "Error creating account"
		c.HTML(http.StatusInternalServerError, "auth_signup.html", formData)
		return
	}

	emailService := emailpkg.NewEmailService()
	emailErr := emailService.SendVerificationEmail(user.Email, verificationToken)

	// Always show the success page, but report a delivery failure
	if emailErr != nil {
		log.Printf("Error sending verification email to %s: %v", user.Email, emailErr)
		c.HTML(http.StatusOK, "auth_signup_success.html", gin.H{
			"email":      user.Email,
			"emailError": "Error sending email: " + emailErr.Error() + ". Please contact support.",
		})
		return
	}

	c.HTML(http.StatusOK, "auth_signup_success.html", gin.H{
		"email": user.Email,
	})
}

func (a *AuthModule) confirmEmail(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := a.db.Where("email_verification_token = ?", token).First(&user).Error; err != nil {
		c.HTML(http.StatusNotFound, "auth_confirm.html", gin.H{
			"success": false,
			"message": "Invalid or expired token",
		})
		return
	}

	if user.EmailVerified {
		c.HTML(http.StatusOK, "auth_confirm.html", gin.H{
			"success": true,
			"message": "Email already confirmed",
		})
		return
	}

	user.EmailVerified = true
	user.EmailVerificationToken = ""

	if err := a.db.Save(&user).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "auth_confirm.html", gin.H{
			"success": false,
			"message": "Error confirming email",
		})
		return
	}

	c.HTML(http.StatusOK, "auth_confirm.html", gin.H{
		"success": true,
		"message": "Email confirmed. You can now log in.",
	})
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/login")
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
