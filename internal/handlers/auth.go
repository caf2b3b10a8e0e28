package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/timmidel/flash/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/idtoken"
)

// GoogleAuthHandler verifies a Google ID token, upserts the user and issues
// the app token the rest of the API authenticates with.
func (h *Handler) GoogleAuthHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: token is required"})
		return
	}

	payload, err := idtoken.Validate(c.Request.Context(), req.Token, "")
	if err != nil {
		log.Printf("ERROR: Invalid Google ID Token: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google ID Token"})
		return
	}

	user := models.User{
		GoogleID:   payload.Subject,
		Email:      claimString(payload.Claims, "email"),
		Name:       claimString(payload.Claims, "name"),
		PictureURL: claimString(payload.Claims, "picture"),
	}

	if err := h.DB.Where(models.User{GoogleID: user.GoogleID}).FirstOrCreate(&user).Error; err != nil {
		log.Printf("ERROR: Could not upsert user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process user"})
		return
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "User authenticated successfully",
		"app_token": tokenString,
		"user":      user,
	})
}

func (h *Handler) UserProfileHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"picture_url": user.PictureURL,
		"joined_at":   user.CreatedAt,
	})
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
