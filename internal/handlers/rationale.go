package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/timmidel/flash/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GenerateRationaleHandler fills the rationale slots that neither the text
// stream nor an image satisfied. All candidates go into one batched prompt
// and the returned array is applied back strictly by position. The whole
// application is one transaction: a failed call or short-circuit changes
// nothing.
func (h *Handler) GenerateRationaleHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, ok := h.ownedDocument(c, userID)
	if !ok {
		return
	}

	var req struct {
		RationaleImageIndices []int `json:"rationaleImageIndices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	var questions []models.Question
	err := h.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("letter asc") }).
		Where("document_id = ?", doc.ID).
		Order("position asc").
		Find(&questions).Error
	if err != nil {
		log.Printf("ERROR: Could not fetch questions for document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate rationales."})
		return
	}

	candidates := questionsNeedingRationale(questions, req.RationaleImageIndices)
	if len(candidates) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "All questions already have a rationale."})
		return
	}

	prompt := buildRationalePrompt(questions, candidates)
	rationales, err := h.AIService.GenerateRationales(c.Request.Context(), prompt)
	if err != nil {
		log.Printf("ERROR: Rationale generation failed for document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate rationales."})
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for i, idx := range candidates {
			rationale := ""
			if i < len(rationales) {
				rationale = rationales[i]
			}
			if err := tx.Model(&models.Question{}).
				Where("id = ?", questions[idx].ID).
				Update("rationale", rationale).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: Could not apply rationales for document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate rationales."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Rationales generated successfully."})
}

// questionsNeedingRationale returns the indices of questions whose rationale
// text is blank and whose position is not covered by a rationale image.
func questionsNeedingRationale(questions []models.Question, imageIndices []int) []int {
	imageAt := make(map[int]bool, len(imageIndices))
	for _, idx := range imageIndices {
		imageAt[idx] = true
	}

	var out []int
	for i, q := range questions {
		if strings.TrimSpace(q.Rationale) == "" && !imageAt[q.Position] {
			out = append(out, i)
		}
	}
	return out
}

// buildRationalePrompt concatenates the picked questions, their choices and
// correct answers into the single batched prompt body.
func buildRationalePrompt(questions []models.Question, picked []int) string {
	var sb strings.Builder
	for i, idx := range picked {
		q := questions[idx]
		fmt.Fprintf(&sb, "Question %d: %s\n", i+1, q.QuestionText)
		for _, choice := range q.Choices {
			fmt.Fprintf(&sb, "%s. %s\n", choice.Letter, choice.Text)
		}
		fmt.Fprintf(&sb, "Answer: %s\n\n", q.Answer)
	}
	return sb.String()
}
