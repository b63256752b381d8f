package collection

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	collectionsvc "github.com/promptlab/promptlab/internal/service/collection"
)

func Register(rg *gin.RouterGroup, svc *collectionsvc.Service) {
	rg.POST("/", createCollection(svc))
	rg.GET("/", listCollections(svc))
	rg.GET("/:id", getCollection(svc))
	rg.DELETE("/:id", deleteCollection(svc))
}

type createCollectionReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func createCollection(svc *collectionsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCollectionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col, err := svc.Create(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, col)
	}
}

func listCollections(svc *collectionsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		collections, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if collections == nil {
			collections = []domaincollection.Collection{}
		}
		c.JSON(http.StatusOK, gin.H{"collections": collections, "total": len(collections)})
	}
}

func getCollection(svc *collectionsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		col, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, col)
	}
}

func deleteCollection(svc *collectionsvc.Service) gin.HandlerFunc {
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

func writeError(c *gin.Context, err error) {
	if errors.Is(err, domaincollection.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
