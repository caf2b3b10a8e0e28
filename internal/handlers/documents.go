package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/timmidel/flash/internal/converter"
	"github.com/timmidel/flash/internal/extractor"
	"github.com/timmidel/flash/internal/models"
	"github.com/timmidel/flash/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExtractionReport is returned with an uploaded document so the client can
// surface extraction quality and decide whether to offer AI completion.
type ExtractionReport struct {
	QuestionCount         int                       `json:"question_count"`
	RationaleImageCount   int                       `json:"rationale_image_count"`
	RationaleImageIndexes []int                     `json:"rationale_image_indices"`
	Slots                 []extractor.RationaleSlot `json:"slots"`
	MissingRationales     []int                     `json:"missing_rationales"`
	Diagnostics           []extractor.Diagnostic    `json:"diagnostics"`
}

// UploadDocumentHandler runs the whole extraction pipeline: convert the
// uploaded .docx once, segment the text view into questions, correlate the
// markup view's rationale images, then persist document, questions, choices
// and images in that order. Image uploads are sequential; a failure midway
// aborts the rest but keeps what was already written.
func (h *Handler) UploadDocumentHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	answerFlag := c.PostForm("answer_flag")
	rationaleFlag := c.PostForm("rationale_flag")
	if title == "" || answerFlag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and answer_flag are required"})
		return
	}

	var folderID *uuid.UUID
	if raw := c.PostForm("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder_id"})
			return
		}
		var folder models.Folder
		if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&folder).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		folderID = &id
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A document file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	markup, err := converter.ConvertDocx(data)
	if err != nil {
		log.Printf("ERROR: Failed to convert document: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to convert document"})
		return
	}
	content, err := converter.HTMLToText(markup)
	if err != nil {
		log.Printf("ERROR: Failed to render document text: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to convert document"})
		return
	}

	segmented := extractor.Segment(content, answerFlag, rationaleFlag)
	images, err := extractor.ExtractImages(markup, rationaleFlag)
	if err != nil {
		log.Printf("ERROR: Failed to correlate rationale images: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to extract rationale images"})
		return
	}
	reconciled := extractor.Reconcile(segmented.Questions, images, segmented.RationaleOccurrences)

	doc := models.Document{
		UserID:        userID,
		FolderID:      folderID,
		Title:         title,
		Content:       content,
		AnswerFlag:    answerFlag,
		RationaleFlag: rationaleFlag,
	}
	if err := h.DB.Create(&doc).Error; err != nil {
		log.Printf("ERROR: Could not create document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}

	for i, q := range segmented.Questions {
		question := models.Question{
			DocumentID:   doc.ID,
			Position:     i,
			QuestionText: q.Text,
			Answer:       q.Answer,
			Rationale:    q.Rationale,
		}
		if err := h.DB.Create(&question).Error; err != nil {
			log.Printf("ERROR: Could not create question %d: %v", i, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save questions"})
			return
		}
		choices := make([]models.Choice, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, models.Choice{
				QuestionID: question.ID,
				Letter:     ch.Letter,
				Text:       ch.Text,
			})
		}
		if err := h.DB.Create(&choices).Error; err != nil {
			log.Printf("ERROR: Could not create choices for question %d: %v", i, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save choices"})
			return
		}
	}

	imageIndices := make([]int, 0, len(images.Images))
	for _, img := range images.Images {
		key := fmt.Sprintf("%s/rationale-%d-%d%s",
			doc.ID, img.RationaleIndex, time.Now().UnixMilli(),
			storage.ExtensionForContentType(img.MIME))

		url, err := h.Storage.UploadObject(c.Request.Context(), key, img.MIME, bytes.NewReader(img.Data))
		if err != nil {
			// Earlier uploads stay persisted; remaining ones are skipped.
			log.Printf("ERROR: Could not upload rationale image %d: %v", img.RationaleIndex, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload rationale image"})
			return
		}

		row := models.RationaleImage{
			DocumentID:     doc.ID,
			RationaleIndex: img.RationaleIndex,
			ImageURL:       url,
		}
		if err := h.DB.Create(&row).Error; err != nil {
			log.Printf("ERROR: Could not save rationale image %d: %v", img.RationaleIndex, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rationale image"})
			return
		}
		imageIndices = append(imageIndices, img.RationaleIndex)
	}

	diagnostics := append([]extractor.Diagnostic{}, segmented.Diagnostics...)
	diagnostics = append(diagnostics, reconciled.Diagnostics...)

	c.JSON(http.StatusCreated, gin.H{
		"document": doc,
		"report": ExtractionReport{
			QuestionCount:         len(segmented.Questions),
			RationaleImageCount:   len(images.Images),
			RationaleImageIndexes: imageIndices,
			Slots:                 reconciled.Slots,
			MissingRationales:     reconciled.Missing,
			Diagnostics:           diagnostics,
		},
	})
}

func (h *Handler) ListDocumentsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := h.DB.Where("user_id = ?", userID).Order("created_at desc")
	if raw := c.Query("folder_id"); raw != "" {
		folderID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder_id"})
			return
		}
		query = query.Where("folder_id = ?", folderID)
	}

	var documents []models.Document
	if err := query.Find(&documents).Error; err != nil {
		log.Printf("ERROR: Could not fetch documents: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// GetDocumentHandler returns one document plus the current rationale
// shortfall, recomputed from the stored rows so it stays accurate after a
// completion run.
func (h *Handler) GetDocumentHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, ok := h.ownedDocument(c, userID)
	if !ok {
		return
	}

	var questions []models.Question
	if err := h.DB.Where("document_id = ?", doc.ID).Order("position asc").Find(&questions).Error; err != nil {
		log.Printf("ERROR: Could not fetch questions for document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}
	var imageIndices []int
	if err := h.DB.Model(&models.RationaleImage{}).
		Where("document_id = ?", doc.ID).
		Order("rationale_index asc").
		Pluck("rationale_index", &imageIndices).Error; err != nil {
		log.Printf("ERROR: Could not fetch rationale images for document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}

	missing := []int{}
	for _, idx := range questionsNeedingRationale(questions, imageIndices) {
		missing = append(missing, questions[idx].Position)
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"report": gin.H{
			"question_count":          len(questions),
			"rationale_image_indices": imageIndices,
			"missing_rationales":      missing,
		},
	})
}

// UpdateDocumentHandler handles renames and folder reassignment; the
// extracted content itself is immutable after upload.
func (h *Handler) UpdateDocumentHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	doc, ok := h.ownedDocument(c, userID)
	if !ok {
		return
	}

	var req struct {
		Title    *string    `json:"title"`
		FolderID *uuid.UUID `json:"folder_id"`
		ToRoot   bool       `json:"to_root"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.ToRoot {
		updates["folder_id"] = nil
	} else if req.FolderID != nil {
		var folder models.Folder
		if err := h.DB.Where("id = ? AND user_id = ?", req.FolderID, userID).First(&folder).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
			return
		}
		updates["folder_id"] = *req.FolderID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"document": doc})
		return
	}

	if err := h.DB.Model(&doc).Updates(updates).Error; err != nil {
		log.Printf("ERROR: Could not update document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// DeleteDocumentHandler cascades to questions, choices and rationale image
// rows, then clears the document's storage prefix. A storage failure is
// logged but never blocks the database delete.
func (h *Handler) DeleteDocumentHandler(c *gin.Context) {
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.AttemptState{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Choice{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.RationaleImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, "id = ?", doc.ID).Error
	})
	if err != nil {
		log.Printf("ERROR: Could not delete document %s: %v", doc.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	if err := h.Storage.DeletePrefix(c.Request.Context(), doc.ID.String()+"/"); err != nil {
		log.Printf("WARNING: Failed to clean up storage for document %s: %v", doc.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

func (h *Handler) ownedDocument(c *gin.Context, userID uuid.UUID) (models.Document, bool) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document id"})
		return models.Document{}, false
	}

	var doc models.Document
	if err := h.DB.Where("id = ? AND user_id = ?", docID, userID).First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return models.Document{}, false
	}
	return doc, true
}
