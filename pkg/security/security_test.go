package security_test

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-ai/reverie/pkg/security"
)

func signFederatedToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims *security.FederatedClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func federatedClaims(email string) *security.FederatedClaims {
	return &security.FederatedClaims{
		Subject: "prov-123",
		Email:   email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
}

func TestVerifyFederatedToken(t *testing.T) {
	secret := []byte("shared-secret")
	signed := signFederatedToken(t, jwt.SigningMethodHS256, secret, federatedClaims("someone@example.com"))

	claims, err := security.VerifyFederatedToken(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", claims.Email)
	assert.Equal(t, "prov-123", claims.Subject)
}

func TestVerifyFederatedTokenWrongSecret(t *testing.T) {
	signed := signFederatedToken(t, jwt.SigningMethodHS256, []byte("shared-secret"), federatedClaims("someone@example.com"))

	_, err := security.VerifyFederatedToken(signed, []byte("other-secret"))
	assert.Error(t, err)
}

func TestVerifyFederatedTokenExpired(t *testing.T) {
	secret := []byte("shared-secret")
	claims := federatedClaims("someone@example.com")
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	signed := signFederatedToken(t, jwt.SigningMethodHS256, secret, claims)

	_, err := security.VerifyFederatedToken(signed, secret)
	assert.Error(t, err)
}

// Tokens signed with anything but HMAC are rejected before the signature
// is even checked, alg confusion must not downgrade the verification.
func TestVerifyFederatedTokenRejectsNonHMAC(t *testing.T) {
	signed := signFederatedToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, federatedClaims("someone@example.com"))

	_, err := security.VerifyFederatedToken(signed, []byte("shared-secret"))
	assert.Error(t, err)
}

func TestVerifyFederatedTokenRequiresEmail(t *testing.T) {
	secret := []byte("shared-secret")
	signed := signFederatedToken(t, jwt.SigningMethodHS256, secret, federatedClaims(""))

	_, err := security.VerifyFederatedToken(signed, secret)
	assert.ErrorIs(t, err, security.ErrInvalidJWT)
}
