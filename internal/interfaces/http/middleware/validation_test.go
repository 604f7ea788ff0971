package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type input struct {
		Slug   string `json:"slug" binding:"slug"`
		Locale string `json:"locale" binding:"locale"`
	}

	tests := []struct {
		name  string
		in    input
		valid bool
	}{
		{"valid", input{Slug: "linen-shirt-2", Locale: "lt"}, true},
		{"region locale", input{Slug: "a", Locale: "en-GB"}, true},
		{"uppercase slug", input{Slug: "Linen", Locale: "en"}, false},
		{"double hyphen", input{Slug: "linen--shirt", Locale: "en"}, false},
		{"trailing hyphen", input{Slug: "linen-", Locale: "en"}, false},
		{"garbage locale", input{Slug: "linen", Locale: "not a locale"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type registerInput struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req registerInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("returns field details for invalid input", func(t *testing.T) {
		w := post(`{"email": "invalid", "password": "short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "email", resp.Error.Details[0].Field)
		assert.Equal(t, "Invalid email format", resp.Error.Details[0].Message)
		assert.Equal(t, "password", resp.Error.Details[1].Field)
		assert.Equal(t, "Must be at least 8 characters", resp.Error.Details[1].Message)
	})

	t.Run("malformed json has no details", func(t *testing.T) {
		w := post(`{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid request body", resp.Error.Message)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("returns success for valid input", func(t *testing.T) {
		w := post(`{"email": "ona@example.com", "password": "long-enough"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type messages struct {
		Required string `validate:"required"`
		Email    string `validate:"omitempty,email"`
		Min      string `validate:"min=5"`
		OneOf    string `validate:"oneof=set increase decrease"`
		Quantity int    `validate:"gte=1"`
	}

	v := validator.New()
	err := v.Struct(messages{Email: "nope", Min: "ab", OneOf: "drop"})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", got["Required"])
	assert.Equal(t, "Invalid email format", got["Email"])
	assert.Equal(t, "Must be at least 5 characters", got["Min"])
	assert.Equal(t, "Must be one of: set increase decrease", got["OneOf"])
	assert.Equal(t, "Must be greater than or equal to 1", got["Quantity"])
}
