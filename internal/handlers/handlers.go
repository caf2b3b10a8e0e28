package handlers

import (
	"net/http"

	"github.com/timmidel/flash/internal/ai"
	"github.com/timmidel/flash/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handler struct {
	DB        *gorm.DB
	AIService *ai.Service
	Storage   *storage.Service
	JWTSecret string
}

func New(db *gorm.DB, jwtSecret string, aiService *ai.Service, storageService *storage.Service) Handler {
	return Handler{DB: db, AIService: aiService, Storage: storageService, JWTSecret: jwtSecret}
}

// currentUserID reads the id the JWT middleware stored on the context.
// A missing or malformed id aborts the request with 401.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	claim, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return uuid.Nil, false
	}
	raw, _ := claim.(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
		return uuid.Nil, false
	}
	return id, true
}
