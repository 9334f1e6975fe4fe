package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
		errTag  string
	}{
		{
			name:    "valid request",
			request: LoginRequest{Username: "admin", Password: "password123"},
		},
		{
			name:    "missing username",
			request: LoginRequest{Password: "password123"},
			wantErr: true,
			errTag:  "required",
		},
		{
			name:    "missing password",
			request: LoginRequest{Username: "admin"},
			wantErr: true,
			errTag:  "required",
		},
		{
			name:    "username too long",
			request: LoginRequest{Username: strings.Repeat("a", 101), Password: "x"},
			wantErr: true,
			errTag:  "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.errTag, errs[0].Tag())
		})
	}
}

func TestSlugValidation(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"portfolio-site", true},
		{"v2", true},
		{"a--b", true},
		{"Portfolio", false},
		{"-leading", false},
		{"trailing-", false},
		{"with space", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := (&ProjectRequest{Title: "x", Slug: tt.slug}).Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoginResponse_Serialization(t *testing.T) {
	data, err := json.Marshal(LoginResponse{Success: true, Token: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"token":"abc"}`, string(data))

	data, err = json.Marshal(LoginResponse{Success: false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false}`, string(data))

	data, err = json.Marshal(AuthCheckResponse{Authenticated: false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":false}`, string(data))
}
