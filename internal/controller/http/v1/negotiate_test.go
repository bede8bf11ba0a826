package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWantsJSON(t *testing.T) {
	cases := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"application/json", true},
		{"application/pdf", false},
		{"*/*", false},
		{"application/*", false},
		{"text/html", false},
		{"application/json;q=0", false},
		{"application/json;q=0.9, application/pdf", false},
		{"application/pdf;q=0.5, application/json", true},
		{"application/json, */*;q=0.1", true},
		{"application/pdf, application/json;q=0.8", false},
		{"application/json;q=0.8, */*;q=0.9", false},
		{"text/html, application/json;q=0.5", true},
		{"garbage", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, wantsJSON(tc.accept), "Accept: %q", tc.accept)
	}
}
