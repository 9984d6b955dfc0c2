package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	tests := map[string]bool{
		"http://localhost:8080/themeserver": true,
		"https://themes.example.com":        true,
		"":                                  false,
		"bogus":                             false,
		"htt:/notaurl":                      false,
		"htts://notaurl":                    false,
		"/path/segment/only":                false,
		"http://%zz":                        false,
	}
	for str, want := range tests {
		t.Run(str, func(t *testing.T) {
			assert.Equal(t, want, IsValidURL(str))
		})
	}
}
