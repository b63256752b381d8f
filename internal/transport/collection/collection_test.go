package collection_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/internal/adapter/memory"
	domaincollection "github.com/promptlab/promptlab/internal/domain/collection"
	collectionsvc "github.com/promptlab/promptlab/internal/service/collection"
	transportcollection "github.com/promptlab/promptlab/internal/transport/collection"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *collectionsvc.Service) {
	t.Helper()
	store := memory.NewStore()
	svc := collectionsvc.NewService(store.Collections(), store, memory.NewBus())
	r := gin.New()
	transportcollection.Register(r.Group("/collections"), svc)
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCollection_Success(t *testing.T) {
	r, _ := newRouter(t)

	w := doJSON(t, r, http.MethodPost, "/collections/", map[string]string{"name": "agents"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var got domaincollection.Collection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "agents", got.Name)
}

func TestCreateCollection_MissingName(t *testing.T) {
	r, _ := newRouter(t)
	w := doJSON(t, r, http.MethodPost, "/collections/", map[string]string{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCollections_Envelope(t *testing.T) {
	r, svc := newRouter(t)
	_, err := svc.Create(context.Background(), "agents", "")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/collections/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Collections []domaincollection.Collection `json:"collections"`
		Total       int                           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Total)
}

func TestGetCollection_NotFound(t *testing.T) {
	r, _ := newRouter(t)
	w := doJSON(t, r, http.MethodGet, "/collections/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCollection(t *testing.T) {
	r, svc := newRouter(t)
	c, err := svc.Create(context.Background(), "agents", "")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodDelete, "/collections/"+c.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/collections/"+c.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
