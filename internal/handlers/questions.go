package handlers

import (
	"log"
	"net/http"

	"github.com/timmidel/flash/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionView is a question joined with the caller's attempt state and, if
// one exists, the rationale image whose index matches the question's
// position. Image association happens here at read time; the rows share no
// foreign key.
type QuestionView struct {
	models.Question
	RationaleImageURL string `json:"rationale_image_url,omitempty"`
	SelectedAnswer    string `json:"selected_answer"`
	Revealed          bool   `json:"revealed"`
}

func (h *Handler) QuestionsByDocumentHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, ok := h.ownedDocument(c, userID)
	if !ok {
		return
	}

	var questions []models.Question
	err := h.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("letter asc") }).
		Where("document_id = ?", doc.ID).
		Order("position asc").
		Find(&questions).Error
	if err != nil {
		log.Printf("ERROR: Could not fetch questions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	var images []models.RationaleImage
	if err := h.DB.Where("document_id = ?", doc.ID).Find(&images).Error; err != nil {
		log.Printf("ERROR: Could not fetch rationale images: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rationale images"})
		return
	}
	imageURLByIndex := make(map[int]string, len(images))
	for _, img := range images {
		imageURLByIndex[img.RationaleIndex] = img.ImageURL
	}

	questionIDs := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	attemptByQuestion := make(map[uuid.UUID]models.AttemptState)
	if len(questionIDs) > 0 {
		var attempts []models.AttemptState
		if err := h.DB.Where("user_id = ? AND question_id IN ?", userID, questionIDs).Find(&attempts).Error; err != nil {
			log.Printf("ERROR: Could not fetch attempt states: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
			return
		}
		for _, a := range attempts {
			attemptByQuestion[a.QuestionID] = a
		}
	}

	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{Question: q}
		view.RationaleImageURL = imageURLByIndex[q.Position]
		if attempt, found := attemptByQuestion[q.ID]; found {
			view.SelectedAnswer = attempt.SelectedAnswer
			view.Revealed = attempt.Revealed
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"questions": views})
}

// UpsertAttemptHandler records quiz progress for one question. State lives
// per (user, question) so two users studying the same document never clash.
func (h *Handler) UpsertAttemptHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
		return
	}

	var req struct {
		SelectedAnswer string `json:"selected_answer"`
		Revealed       bool   `json:"revealed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var question models.Question
	err = h.DB.Joins("JOIN documents ON documents.id = questions.document_id").
		Where("questions.id = ? AND documents.user_id = ?", questionID, userID).
		First(&question).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	attempt := models.AttemptState{
		UserID:         userID,
		QuestionID:     questionID,
		SelectedAnswer: req.SelectedAnswer,
		Revealed:       req.Revealed,
	}
	err = h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_answer", "revealed", "updated_at"}),
	}).Create(&attempt).Error
	if err != nil {
		log.Printf("ERROR: Could not save attempt state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attempt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempt": attempt})
}

// ResetAttemptsHandler clears the caller's quiz progress for a document.
func (h *Handler) ResetAttemptsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, ok := h.ownedDocument(c, userID)
	if !ok {
		return
	}

	var questionIDs []uuid.UUID
	if err := h.DB.Model(&models.Question{}).Where("document_id = ?", doc.ID).Pluck("id", &questionIDs).Error; err != nil {
		log.Printf("ERROR: Could not list questions for document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset attempts"})
		return
	}
	if len(questionIDs) > 0 {
		if err := h.DB.Where("user_id = ? AND question_id IN ?", userID, questionIDs).Delete(&models.AttemptState{}).Error; err != nil {
			log.Printf("ERROR: Could not reset attempts for document %s: %v", doc.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset attempts"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attempts reset"})
}
