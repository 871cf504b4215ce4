package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/keypanel/internal/domain/model"
)

const mask = "••••••••••••••••••••"

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{name: "empty", secret: "", want: ""},
		{name: "shorter than suffix", secret: "abc", want: mask},
		{name: "exactly four", secret: "abcd", want: mask + "abcd"},
		{name: "generated", secret: "sk_0123456789abcdef0123456789abcdef0123456789abcdef", want: mask + "cdef"},
		{name: "multibyte tail", secret: "pässwörd€", want: mask + "örd€"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, model.MaskSecret(tc.secret))
		})
	}
}

func TestMaskSecret_NeverRevealsPrefix(t *testing.T) {
	for l := 4; l <= 64; l++ {
		secret := strings.Repeat("x", l-4) + "TAIL"
		got := model.MaskSecret(secret)
		assert.Equal(t, mask+"TAIL", got)
		assert.NotContains(t, strings.TrimSuffix(got, "TAIL"), "x")
	}
}

func TestAPIKey_Masked(t *testing.T) {
	k := model.APIKey{Secret: "sk_deadbeef"}
	assert.Equal(t, mask+"beef", k.Masked())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "—", model.FormatDate(nil))
	assert.Equal(t, "—", model.FormatDate(&time.Time{}))

	ts := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "May 1, 2024", model.FormatDate(&ts))
}
