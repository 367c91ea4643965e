package shares

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miriamlab/server/miriamlab/shares"
)

func newRouter() (*gin.Engine, *shares.MemoryStore) {
	gin.SetMode(gin.TestMode)

	store := shares.NewMemoryStore()
	router := gin.New()
	router.POST("/share", func(c *gin.Context) { c.Set("user_id", "u1") }, ShareHandler(store, "https://miriam-lab.test"))
	router.GET("/results/:id", GetResultHandler(store))

	return router, store
}

func share(router *gin.Engine, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body) //nolint:errcheck // test code
	req := httptest.NewRequest(http.MethodPost, "/share", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestShareAndFetch(t *testing.T) {
	router, store := newRouter()

	w := share(router, gin.H{
		"mode":        "compare",
		"title":       "gpt vs llama",
		"result_data": gin.H{"results": []gin.H{{"model": "a", "output": "hi"}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "https://miriam-lab.test/results/"+created.ID, created.URL)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/results/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got shares.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "gpt vs llama", got.Title)
	assert.Empty(t, got.UserID)

	store.Unpublish(created.ID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/results/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShare_Validation(t *testing.T) {
	router, _ := newRouter()

	assert.Equal(t, http.StatusBadRequest, share(router, gin.H{"mode": "chat", "result_data": gin.H{"a": 1}}).Code)
	assert.Equal(t, http.StatusBadRequest, share(router, gin.H{"mode": "judge"}).Code)
	assert.Equal(t, http.StatusBadRequest, share(router, gin.H{"mode": "judge", "result_data": gin.H{}}).Code)
}
