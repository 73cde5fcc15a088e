package crypto_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarantool/go-objgraph/crypto"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return privateKey
}

func TestRSAPSS_SignVerify(t *testing.T) {
	t.Parallel()

	rsapss := crypto.NewRSAPSS(generateKey(t))
	assert.Equal(t, "rsapss", rsapss.Name())

	data := []byte("abc")

	sig, err := rsapss.Sign(data)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	require.NoError(t, rsapss.Verify(data, sig))
	require.ErrorContains(t, rsapss.Verify([]byte("abd"), sig), "failed to verify")
}

func TestRSAPSS_VerifierOnly(t *testing.T) {
	t.Parallel()

	privateKey := generateKey(t)

	sig, err := crypto.NewRSAPSS(privateKey).Sign([]byte("abc"))
	require.NoError(t, err)

	verifier := crypto.NewRSAPSSVerifier(&privateKey.PublicKey)
	require.NoError(t, verifier.Verify([]byte("abc"), sig))

	_, err = verifier.Sign([]byte("abc"))
	require.ErrorIs(t, err, crypto.ErrNoPrivateKey)
}

func TestRSAPSS_WithoutKeys(t *testing.T) {
	t.Parallel()

	rsapss := crypto.NewRSAPSS(nil)

	_, err := rsapss.Sign([]byte("abc"))
	require.ErrorIs(t, err, crypto.ErrNoPrivateKey)

	err = rsapss.Verify([]byte("abc"), []byte("sig"))
	require.ErrorIs(t, err, crypto.ErrNoPublicKey)
}

func TestRSAPSS_WrongKey(t *testing.T) {
	t.Parallel()

	sig, err := crypto.NewRSAPSS(generateKey(t)).Sign([]byte("abc"))
	require.NoError(t, err)

	other := crypto.NewRSAPSS(generateKey(t))
	require.ErrorContains(t, other.Verify([]byte("abc"), sig), "failed to verify")
}
