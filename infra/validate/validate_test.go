package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type callbackTarget struct {
	Path string `validate:"required,callbackpath"`
}

func TestCallbackPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"relative path", "/ninepay/return", true},
		{"root", "/", true},
		{"https url", "https://shop.example/ninepay/ipn", true},
		{"http url", "http://localhost:9999/ninepay/ipn", true},
		{"empty", "", false},
		{"no leading slash", "ninepay/return", false},
		{"protocol relative", "//evil.example/return", false},
		{"other scheme", "ftp://shop.example/return", false},
		{"url without host", "https:///return", false},
		{"whitespace", "/ninepay/ return", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(callbackTarget{Path: tt.input})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCustomValidate_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		CustomValidate()
		CustomValidate()
	})
}

func BenchmarkValidation(b *testing.B) {
	target := callbackTarget{Path: "https://shop.example/ninepay/ipn"}

	for b.Loop() {
		_ = Struct(target)
	}
}
