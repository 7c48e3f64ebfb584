package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"oak-panel", "oak-panel"},
		{"Oak Panel", "oak-panel"},
		{"  --Oak__Panel--  ", "oak-panel"},
		{"Tölgy asztallap ÁÉŐŰ", "tolgy-asztallap-aeou"},
		{"Bükk / Fenyő 18mm", "bukk-fenyo-18mm"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.in))
		})
	}
}

func TestBuildEntityURL(t *testing.T) {
	assert.Equal(t, "https://woodshop.example/oak-panel", BuildEntityURL("woodshop", "example", "oak-panel"))
	assert.Equal(t, "https://woodshop.example/oak-panel", BuildEntityURL("woodshop", ".example", "oak-panel"))
}
