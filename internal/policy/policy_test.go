package policy

import (
	"net/http"
	"testing"

	"marketplace-backend/internal/models"
)

func user(id uint, seller bool) *models.User {
	return &models.User{Base: models.Base{ID: id}, IsSeller: seller}
}

func TestAllow(t *testing.T) {
	tests := []struct {
		name   string
		method string
		caller *models.User
		want   bool
	}{
		{"anonymous get", http.MethodGet, nil, true},
		{"anonymous head", http.MethodHead, nil, true},
		{"anonymous options", http.MethodOptions, nil, true},
		{"anonymous post", http.MethodPost, nil, false},
		{"buyer post", http.MethodPost, user(1, false), false},
		{"seller post", http.MethodPost, user(1, true), true},
		{"seller delete", http.MethodDelete, user(1, true), true},
		{"zero id seller", http.MethodPatch, user(0, true), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allow(tt.method, tt.caller); got != tt.want {
				t.Errorf("Allow(%s) = %v, want %v", tt.method, got, tt.want)
			}
		})
	}
}

func TestAllowObject(t *testing.T) {
	tests := []struct {
		name   string
		method string
		caller *models.User
		owner  uint
		want   bool
	}{
		{"anonymous read", http.MethodGet, nil, 7, true},
		{"other user read", http.MethodGet, user(3, true), 7, true},
		{"owner put", http.MethodPut, user(7, true), 7, true},
		{"owner patch", http.MethodPatch, user(7, true), 7, true},
		{"other seller delete", http.MethodDelete, user(3, true), 7, false},
		{"anonymous delete", http.MethodDelete, nil, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowObject(tt.method, tt.caller, tt.owner); got != tt.want {
				t.Errorf("AllowObject(%s) = %v, want %v", tt.method, got, tt.want)
			}
		})
	}
}
