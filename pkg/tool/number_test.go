package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatFixed(t *testing.T) {
	cases := []struct {
		in     float64
		digits int
		want   string
	}{
		{0, 2, "0.00"},
		{50, 2, "50.00"},
		{100.0 / 3.0, 2, "33.33"},
		{0.125, 2, "0.13"},
		{1.005, 2, "1.00"},
		{2.5, 0, "3"},
		{1.25, 1, "1.3"},
		{7.0 / 3.0, 1, "2.3"},
		{0.05, 1, "0.1"},
		{-1.5, 0, "-2"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatFixed(tc.in, tc.digits), "in=%v digits=%d", tc.in, tc.digits)
	}
}

func TestRound2AndPercent(t *testing.T) {
	require.Equal(t, 20.0, Percent(2, 10))
	require.Equal(t, 33.33, Percent(1, 3))
	require.Equal(t, 66.67, Percent(2, 3))
	require.Equal(t, 0.0, Percent(5, 0))
	require.Equal(t, int64(3), RoundInt(2.5))
	require.Equal(t, int64(2), RoundInt(2.49))
}
