package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveIsStable(t *testing.T) {
	a := Derive("203.0.113.7", "Mozilla/5.0")
	b := Derive("203.0.113.7", "Mozilla/5.0")
	require.Equal(t, a, b, "same inputs must yield the same identity")
}

func TestDeriveDistinguishesClients(t *testing.T) {
	base := Derive("203.0.113.7", "Mozilla/5.0")
	require.NotEqual(t, base, Derive("203.0.113.8", "Mozilla/5.0"), "different IP")
	require.NotEqual(t, base, Derive("203.0.113.7", "curl/8.0"), "different user agent")
	// The separator prevents ambiguous concatenations from colliding.
	require.NotEqual(t, Derive("ab", "c"), Derive("a", "bc"))
}

func TestIsAnonymous(t *testing.T) {
	require.True(t, IsAnonymous(Derive("203.0.113.7", "Mozilla/5.0")))
	require.False(t, IsAnonymous("0198c2f1-5a3e-7c1d-9f4b-1234567890ab"))
	require.False(t, IsAnonymous(""))
	require.False(t, IsAnonymous("anon:"))
}
