package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDigestIsDeterministic(t *testing.T) {
	d1, err := Digest("funcao principal(){}")
	require.NoError(t, err)
	d2, err := Digest("funcao principal(){}")
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestDigestDiffersOnChange(t *testing.T) {
	d1, _ := Digest("a")
	d2, _ := Digest("b")
	require.NotEqual(t, d1, d2)
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir(), []byte("test-salt"))
	require.NoError(t, err)

	digest, err := Digest("funcao principal(){ escreva(1) }")
	require.NoError(t, err)

	entry := &Entry{TokenCount: 7, Emitted: "print(1)\n", CompiledAt: time.Unix(0, 0)}
	require.NoError(t, c.Put(digest, entry))

	got, ok, err := c.Get(digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "print(1)\n", got.Emitted)
	require.Equal(t, digest, got.SourceDigest)
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := Open(t.TempDir(), []byte("test-salt"))
	require.NoError(t, err)

	digest, _ := Digest("nunca compilado")
	_, ok, err := c.Get(digest)
	require.NoError(t, err)
	require.False(t, ok)
}
