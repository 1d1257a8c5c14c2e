package payload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerbCodes(t *testing.T) {
	seen := make(map[[2]byte]Verb)
	for v := Verb(0); v < verbCount; v++ {
		code := v.Code()
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", string(code[:]))
		seen[code] = v

		got, ok := VerbFromCode(code)
		require.True(t, ok)
		require.Equal(t, v, got)
		require.NotEmpty(t, v.Description())
	}
}

func TestVerbFromCodeUnknown(t *testing.T) {
	_, ok := VerbFromCode([2]byte{'X', 'X'})
	require.False(t, ok)
}

func TestStatus(t *testing.T) {
	require.True(t, StatusOkay.OK())
	require.False(t, StatusFail.OK())
	require.Equal(t, "OKAY", StatusOkay.String())
	require.Equal(t, "FAIL", StatusFail.String())
}
