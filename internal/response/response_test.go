package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 25)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(2, 500, 250)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
}

func TestFailCarriesCodeAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		Fail(c, http.StatusConflict, ErrClassFull)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrClassFull, body.Error.Code)
	assert.Equal(t, "Sorry, this class is fully booked.", body.Error.Message)
	assert.Equal(t, "req-123", body.Metadata.RequestID)
	assert.Nil(t, body.Data)
}

func TestRequestIDRejectsOversizedHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{}) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	req.Header.Set("X-Request-ID", string(long))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
