package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateAvailable(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.2.0", "1.3.0", true},
		{"v1.3.0", "1.3.0", false},
		{"2.0.0", "1.9.9", false},
		{"", "1.0.0", false},
		{"dev", "1.0.0", false},
		{"1.0.0", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UpdateAvailable(tt.current, tt.latest), "%s -> %s", tt.current, tt.latest)
	}
}
