package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSendValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendValidationError(c, map[string]string{"company_name": "This field may not be blank."})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "This field may not be blank.", data["company_name"])
}

func TestSendInternalError_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendInternalError(c, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "connection refused")
	require.Len(t, c.Errors, 1)
}

func TestPageAndPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var page, limit int
	var id int64
	var ok bool
	r.GET("/items/:id", func(c *gin.Context) {
		page, limit = Page(c)
		id, ok = PathID(c, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/12?page=0&limit=500", nil))
	require.Equal(t, 1, page)
	require.Equal(t, 100, limit)
	require.True(t, ok)
	require.EqualValues(t, 12, id)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	require.False(t, ok)
	require.Equal(t, 10, limit)
}
