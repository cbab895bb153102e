package guard

import (
	"testing"

	"admin-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	admin := models.Session{
		IsAuthenticated: true,
		User:            &models.User{ID: "1", IsAdmin: true},
	}
	regular := models.Session{
		IsAuthenticated: true,
		User:            &models.User{ID: "2"},
	}
	anonymous := models.Session{}

	tests := []struct {
		name          string
		sess          models.Session
		requiresAdmin bool
		want          bool
	}{
		{"admin on admin view", admin, true, true},
		{"admin on plain view", admin, false, true},
		{"regular on admin view", regular, true, false},
		{"regular on plain view", regular, false, true},
		{"anonymous on admin view", anonymous, true, false},
		{"anonymous on plain view", anonymous, false, false},
		{"authenticated without user record", models.Session{IsAuthenticated: true}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.sess, tt.requiresAdmin))
		})
	}
}
