package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Limit: 20, Offset: 0}},
		{"?limit=5&offset=10", Params{Limit: 5, Offset: 10}},
		{"?limit=500", Params{Limit: 100, Offset: 0}},
		{"?limit=abc&offset=-3", Params{Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/usage"+tt.query, nil)

			assert.Equal(t, tt.want, FromQuery(c, 20, 100))
		})
	}
}

func TestNewMeta(t *testing.T) {
	assert.True(t, NewMeta(Params{Limit: 20, Offset: 0}, 21).HasMore)
	assert.False(t, NewMeta(Params{Limit: 20, Offset: 20}, 21).HasMore)
}
