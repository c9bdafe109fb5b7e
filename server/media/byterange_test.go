package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	good := []struct {
		header string
		start  int64
		end    int64
	}{
		{"bytes=100-199", 100, 199},
		{"bytes=0-", 0, 999},
		{"bytes=-", 0, 999},
		{"bytes=500-", 500, 999},
		{"bytes=999-999", 999, 999},
		// No suffix ranges: an empty start is simply 0
		{"bytes=-10", 0, 10},
		{"bytes=0-99, 200-299", 0, 99},
	}
	for _, g := range good {
		r, err := ParseRange(g.header, 1000)
		require.NoError(t, err, g.header)
		require.Equal(t, g.start, r.Start, g.header)
		require.Equal(t, g.end, r.End, g.header)
		require.Equal(t, g.end-g.start+1, r.Length(), g.header)
	}

	bad := []string{
		"",
		"items=0-10",
		"bytes=abc",
		"bytes=900-1200",
		"bytes=1000-",
		"bytes=200-100",
		"bytes=0-99999999999999999999999",
	}
	for _, h := range bad {
		_, err := ParseRange(h, 1000)
		require.ErrorIs(t, err, ErrInvalidRange, h)
	}

	// An empty file has no satisfiable range
	_, err := ParseRange("bytes=0-", 0)
	require.ErrorIs(t, err, ErrInvalidRange)
}
