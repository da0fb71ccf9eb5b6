package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillis_Humanized_Boundaries(t *testing.T) {
	cases := []struct {
		in   Millis
		want string
	}{
		{Millis(0), "0ms"},
		{Millis(999), "999ms"},
		{Millis(1000), "1.00s"},
		{Millis(59_999), "60.00s"},
		{Millis(60_000), "1.00m"},
		{Millis(90_000), "1.50m"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d_%d", i, int64(tc.in)), func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Humanized())
		})
	}
}

func TestMillis_SecondsAndMinutes(t *testing.T) {
	assert.InDelta(t, 1.5, Millis(1500).Seconds(), 1e-9)
	assert.InDelta(t, 2.0, Millis(120_000).Minutes(), 1e-9)
}
