package validation

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type nestedItem struct {
	FileURL string `json:"file_url" binding:"required"`
}

type sampleRequest struct {
	Email string       `json:"email" binding:"required,email"`
	Level int          `json:"level" binding:"min=1,max=9"`
	Kind  string       `json:"kind" binding:"omitempty,oneof=TRL CRL"`
	Items []nestedItem `json:"items" binding:"required,min=1,dive"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req sampleRequest
	return c.ShouldBindJSON(&req)
}

func TestFromBinding_UsesJSONNames(t *testing.T) {
	err := bind(t, `{"email":"nope","level":12,"kind":"XRL","items":[{"file_url":""}]}`)
	require.Error(t, err)

	fields := FromBinding(err)

	require.Equal(t, "Enter a valid email address.", fields["email"])
	require.Equal(t, "Ensure this value is less than or equal to 9.", fields["level"])
	require.Equal(t, `"XRL" is not a valid choice.`, fields["kind"])
	require.Equal(t, MsgRequired, fields["items[0].file_url"])
}

func TestFromBinding_MalformedJSON(t *testing.T) {
	err := bind(t, `{"email":`)
	require.Error(t, err)

	fields := FromBinding(err)

	require.Contains(t, fields, "non_field_errors")
}

func TestErrors_MergeAndAs(t *testing.T) {
	inner := Errors{}
	inner.Add("revenue", "Ensure this value is greater than or equal to 0.")
	outer := Errors{}
	outer.Merge("financial_data[1]", inner)
	outer.Add("company_name", MsgBlank)
	outer.Add("company_name", "ignored")

	err := fmt.Errorf("complete onboarding: %w", outer.Err())
	got, ok := As(err)

	require.True(t, ok)
	require.Equal(t, MsgBlank, got["company_name"])
	require.Contains(t, got, "financial_data[1].revenue")
	require.NoError(t, Errors{}.Err())

	_, ok = As(errors.New("plain"))
	require.False(t, ok)
}

func TestIsEmail(t *testing.T) {
	require.True(t, IsEmail("founder@raven.test"))
	require.False(t, IsEmail("founder@"))
	require.False(t, IsEmail(""))
}
