package prompt

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	promptsvc "github.com/promptlab/promptlab/internal/service/prompt"
)

// Register mounts the prompt REST endpoints on the given router group.
func Register(rg *gin.RouterGroup, svc *promptsvc.Service) {
	rg.POST("/", createPrompt(svc))
	rg.GET("/", listPrompts(svc))
	rg.GET("/:id", getPrompt(svc))
	rg.PUT("/:id", replacePrompt(svc))
	rg.PATCH("/:id", patchPrompt(svc))
	rg.DELETE("/:id", deletePrompt(svc))
	rg.GET("/:id/versions", listVersions(svc))
	rg.GET("/:id/versions/:version", getVersion(svc))
	rg.POST("/:id/versions/:version/revert", revertPrompt(svc))
}

type createPromptReq struct {
	Title        string     `json:"title" binding:"required"`
	Content      string     `json:"content" binding:"required"`
	Description  string     `json:"description"`
	CollectionID *uuid.UUID `json:"collection_id"`
	Tags         []string   `json:"tags"`
}

func createPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPromptReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Create(c.Request.Context(), promptsvc.CreateParams{
			Title:        req.Title,
			Content:      req.Content,
			Description:  req.Description,
			CollectionID: req.CollectionID,
			Tags:         req.Tags,
		})
		if err != nil {
			if errors.Is(err, domaincollection.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection_id"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func listPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainprompt.ListFilters

		if v := c.Query("collection_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection_id"})
				return
			}
			filters.CollectionID = &id
		}
		filters.Search = c.Query("search")
		if v := c.Query("tags"); v != "" {
			filters.Tags = strings.Split(v, ",")
		}

		prompts, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if prompts == nil {
			prompts = []domainprompt.Prompt{}
		}
		c.JSON(http.StatusOK, gin.H{"prompts": prompts, "total": len(prompts)})
	}
}

func getPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		p, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type replacePromptReq struct {
	Title        string     `json:"title" binding:"required"`
	Content      string     `json:"content" binding:"required"`
	Description  string     `json:"description"`
	CollectionID *uuid.UUID `json:"collection_id"`
	Tags         []string   `json:"tags"`
}

// replacePrompt is the PUT path: every field is rewritten, and an omitted
// collection_id detaches the prompt. Omitted tags clear the tag set.
func replacePrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req replacePromptReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tags := req.Tags
		if tags == nil {
			tags = []string{}
		}
		p, err := svc.Update(c.Request.Context(), id, domainprompt.UpdateParams{
			Title:           &req.Title,
			Content:         &req.Content,
			Description:     &req.Description,
			CollectionID:    req.CollectionID,
			ClearCollection: req.CollectionID == nil,
			Tags:            tags,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type patchPromptReq struct {
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	Description  *string    `json:"description"`
	CollectionID *uuid.UUID `json:"collection_id"`
	Tags         []string   `json:"tags"`
}

// patchPrompt updates only the fields present in the body.
func patchPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req patchPromptReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Update(c.Request.Context(), id, domainprompt.UpdateParams{
			Title:        req.Title,
			Content:      req.Content,
			Description:  req.Description,
			CollectionID: req.CollectionID,
			Tags:         req.Tags,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deletePrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		if err := svc.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listVersions(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		metas, err := svc.ListVersions(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if metas == nil {
			metas = []domainprompt.VersionMeta{}
		}
		c.JSON(http.StatusOK, gin.H{"versions": metas, "total": len(metas)})
	}
}

func getVersion(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, number, ok := versionParams(c)
		if !ok {
			return
		}

		v, err := svc.GetVersion(c.Request.Context(), id, number)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func revertPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, number, ok := versionParams(c)
		if !ok {
			return
		}

		p, err := svc.Revert(c.Request.Context(), id, number)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func versionParams(c *gin.Context) (uuid.UUID, int, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, 0, false
	}
	number, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version number"})
		return uuid.Nil, 0, false
	}
	return id, number, true
}

// writeError maps domain sentinels to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainprompt.ErrNotFound), errors.Is(err, domainprompt.ErrVersionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainprompt.ErrInvalidVersion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainprompt.ErrNoOpRevert):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaincollection.ErrNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection_id"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
