package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyguard/internal/apperr"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=10"`
	Role  string `json:"role" validate:"oneof=parent child"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   signup
		wantErr map[string]string
	}{
		{
			name:  "valid",
			input: signup{Email: "test@example.com", Name: "Sam", Role: "parent"},
		},
		{
			name:    "bad email",
			input:   signup{Email: "testexample.com", Name: "Sam", Role: "child"},
			wantErr: map[string]string{"email": "must be a valid email"},
		},
		{
			name:  "missing fields",
			input: signup{Role: "admin"},
			wantErr: map[string]string{
				"email": "is required",
				"name":  "is required",
				"role":  "must be one of: parent child",
			},
		},
		{
			name:    "name too long",
			input:   signup{Email: "a@b.co", Name: "Bartholomew", Role: "child"},
			wantErr: map[string]string{"name": "must be at most 10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			typed := apperr.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, apperr.KindValidation, typed.Kind())
			assert.Equal(t, tt.wantErr, typed.Details())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","name":"Sam","role":"child"}`))
		var got signup
		require.NoError(t, DecodeJSON(req, &got))
		assert.Equal(t, "Sam", got.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","name":"Sam","role":"child","admin":true}`))
		var got signup
		err := DecodeJSON(req, &got)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var got signup
		err := DecodeJSON(req, &got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request body is required")
	})

	t.Run("fails validation", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","name":"Sam","role":"child"}`))
		var got signup
		err := DecodeJSON(req, &got)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}
