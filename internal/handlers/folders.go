package handlers

import (
	"log"
	"net/http"

	"github.com/timmidel/flash/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (h *Handler) CreateFolderHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name     string     `json:"name" binding:"required"`
		ParentID *uuid.UUID `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: name is required"})
		return
	}

	if req.ParentID != nil {
		var parent models.Folder
		if err := h.DB.Where("id = ? AND user_id = ?", req.ParentID, userID).First(&parent).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent folder not found"})
			return
		}
	}

	folder := models.Folder{
		UserID:   userID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}
	if err := h.DB.Create(&folder).Error; err != nil {
		log.Printf("ERROR: Could not create folder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"folder": folder})
}

func (h *Handler) ListFoldersHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var folders []models.Folder
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&folders).Error; err != nil {
		log.Printf("ERROR: Could not fetch folders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch folders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// UpdateFolderHandler renames a folder or moves it under another one. A
// folder may not move under itself or one of its descendants.
func (h *Handler) UpdateFolderHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder id"})
		return
	}
	var folder models.Folder
	if err := h.DB.Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	var req struct {
		Name     *string    `json:"name"`
		ParentID *uuid.UUID `json:"parent_id"`
		ToRoot   bool       `json:"to_root"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.ToRoot {
		updates["parent_id"] = nil
	} else if req.ParentID != nil {
		cycle, err := h.wouldCreateCycle(userID, folderID, *req.ParentID)
		if err != nil {
			log.Printf("ERROR: Could not check folder ancestry: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
			return
		}
		if cycle {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot move a folder into itself or its descendants"})
			return
		}
		updates["parent_id"] = *req.ParentID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"folder": folder})
		return
	}

	if err := h.DB.Model(&folder).Updates(updates).Error; err != nil {
		log.Printf("ERROR: Could not update folder %s: %v", folderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

// DeleteFolderHandler removes one folder. Its documents detach to the root
// and its child folders move up to the deleted folder's parent; nothing
// inside it is destroyed.
func (h *Handler) DeleteFolderHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folder id"})
		return
	}
	var folder models.Folder
	if err := h.DB.Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Document{}).Where("folder_id = ?", folder.ID).Update("folder_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Folder{}).Where("parent_id = ?", folder.ID).Update("parent_id", folder.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Folder{}, "id = ?", folder.ID).Error
	})
	if err != nil {
		log.Printf("ERROR: Could not delete folder %s: %v", folderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted"})
}

// wouldCreateCycle reports whether newParent is target itself or sits in
// target's subtree, by walking newParent's ancestor chain.
func (h *Handler) wouldCreateCycle(userID, target, newParent uuid.UUID) (bool, error) {
	current := &newParent
	for current != nil {
		if *current == target {
			return true, nil
		}
		var folder models.Folder
		if err := h.DB.Where("id = ? AND user_id = ?", current, userID).First(&folder).Error; err != nil {
			return false, err
		}
		current = folder.ParentID
	}
	return false, nil
}
