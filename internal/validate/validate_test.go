package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"user ok", UserID("u1"), false},
		{"user empty", UserID(""), true},
		{"user whitespace", UserID("   "), false},
		{"filename ok", Filename("a.png"), false},
		{"filename empty", Filename(""), true},
		{"filename whitespace", Filename(" "), false},
		{"content type ok", ContentType("image/png"), false},
		{"content type min", ContentType("a/b"), false},
		{"content type short", ContentType("ab"), true},
		{"content type padded", ContentType(" a "), false},
		{"content type counts runes", ContentType("é/"), true},
		{"size one", Size(1), false},
		{"size zero", Size(0), true},
		{"size negative", Size(-5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, tt.err)
			} else {
				assert.NoError(t, tt.err)
			}
		})
	}
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	calls := 0
	err := All(
		func() error { calls++; return nil },
		func() error { calls++; return UserID("") },
		func() error { calls++; return nil },
	)
	assert.EqualError(t, err, "user_id required")
	assert.Equal(t, 2, calls)
}
