package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hera/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars!!",
		Issuer: "hera-test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := testService()
	orgID := uuid.New()
	userID := uuid.New()

	token, err := svc.GenerateToken(orgID, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, orgID.String(), claims.OrganizationID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "hera-test", claims.Issuer)

	parsed, err := claims.GetOrganizationUUID()
	require.NoError(t, err)
	assert.Equal(t, orgID, parsed)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := testService()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := testService()
	other := NewJWTService(config.JWTConfig{Secret: "another-secret-entirely-32-chars!!!", Issuer: "hera-test"})

	token, err := other.GenerateToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := testService()
	svc.expiration = -time.Minute

	token, err := svc.GenerateToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsMissingOrganization(t *testing.T) {
	svc := testService()

	// Hand-build a token without the organization claim
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "hera-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := raw.SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrMissingOrganizationID)
}
