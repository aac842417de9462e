package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fiado/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationProbe struct {
	Name   string          `json:"name" binding:"required,max=5"`
	Mode   string          `json:"mode" binding:"omitempty,oneof=summary detailed"`
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req validationProbe
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.Amount))
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFields map[string]string
	}{
		{
			name:       "valid input",
			body:       `{"name":"ana","mode":"summary","amount":"12.50"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing name and zero amount",
			body:       `{"amount":"0"}`,
			wantStatus: http.StatusBadRequest,
			wantFields: map[string]string{
				"name":   "This field is required",
				"amount": "Must be greater than 0",
			},
		},
		{
			name:       "long name and unknown mode",
			body:       `{"name":"abcdefgh","mode":"full","amount":1}`,
			wantStatus: http.StatusBadRequest,
			wantFields: map[string]string{
				"name": "Must be at most 5 characters",
				"mode": "Must be one of: summary detailed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(RequestIDHeader, "req-v")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantFields == nil {
				return
			}

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			assert.Equal(t, "req-v", resp.Error.RequestID)

			got := make(map[string]string, len(resp.Error.Details))
			for _, d := range resp.Error.Details {
				got[d.Field] = d.Message
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
