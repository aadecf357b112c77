package middleware_test

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"prodi/internal/transport/bot/middleware"
)

func TestSenderID(t *testing.T) {
	testCases := []struct {
		name     string
		update   telego.Update
		expected int64
	}{
		{
			name:     "Message",
			update:   telego.Update{Message: &telego.Message{From: &telego.User{ID: 7}}},
			expected: 7,
		},
		{
			name:     "Channel post without sender",
			update:   telego.Update{Message: &telego.Message{}},
			expected: 0,
		},
		{
			name:     "Callback query",
			update:   telego.Update{CallbackQuery: &telego.CallbackQuery{From: telego.User{ID: 9}}},
			expected: 9,
		},
		{
			name:     "Other update",
			update:   telego.Update{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, middleware.SenderID(tc.update))
		})
	}
}
