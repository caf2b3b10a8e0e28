package main

import (
	"context"
	"log"
	"strings"

	"github.com/timmidel/flash/internal/ai"
	"github.com/timmidel/flash/internal/database"
	"github.com/timmidel/flash/internal/handlers"
	"github.com/timmidel/flash/internal/middleware"
	"github.com/timmidel/flash/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

func main() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Could not find config.yaml, using environment variables only.")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}

	jwtSecret := viper.GetString("jwt.secret_key")
	if jwtSecret == "" {
		log.Fatal("JWT secret key not found in config")
	}
	geminiAPIKey := viper.GetString("gemini.api_key")
	if geminiAPIKey == "" {
		log.Fatal("Gemini API key not found in config")
	}
	aiService, err := ai.NewService(geminiAPIKey)
	if err != nil {
		log.Fatalf("Could not initialize AI service: %v", err)
	}

	bucketName := viper.GetString("storage.rationale_images_bucket")
	storageService, err := storage.NewService(context.Background(), bucketName)
	if err != nil {
		log.Fatalf("Could not initialize object storage: %v", err)
	}

	h := handlers.New(db, jwtSecret, aiService, storageService)

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/google", h.GoogleAuthHandler)

		authorized := v1.Group("/")
		authorized.Use(middleware.JWTMiddleware(jwtSecret))
		{
			authorized.GET("/users/me", h.UserProfileHandler)

			authorized.POST("/documents", h.UploadDocumentHandler)
			authorized.GET("/documents", h.ListDocumentsHandler)
			authorized.GET("/documents/:id", h.GetDocumentHandler)
			authorized.PATCH("/documents/:id", h.UpdateDocumentHandler)
			authorized.DELETE("/documents/:id", h.DeleteDocumentHandler)
			authorized.GET("/documents/:id/questions", h.QuestionsByDocumentHandler)
			authorized.DELETE("/documents/:id/attempts", h.ResetAttemptsHandler)
			authorized.POST("/documents/:id/rationales/generate", h.GenerateRationaleHandler)

			authorized.PUT("/questions/:id/attempt", h.UpsertAttemptHandler)

			authorized.POST("/folders", h.CreateFolderHandler)
			authorized.GET("/folders", h.ListFoldersHandler)
			authorized.PATCH("/folders/:id", h.UpdateFolderHandler)
			authorized.DELETE("/folders/:id", h.DeleteFolderHandler)
		}
	}

	port := viper.GetString("server.port")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Could not start server: %v", err)
	}
}
