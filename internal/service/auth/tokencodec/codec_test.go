package tokencodec

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/models"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()

	c, err := New(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err, "codec should be created without errors")

	return c
}

func Test_Codec_New(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		c, err := New(Config{AccessSecret: "a", RefreshSecret: "r"})
		require.NoError(t, err)

		require.Equal(t, defaultAccessTokenTTL, c.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, c.refreshTTL, "default refresh token TTL should be set")
		require.Equal(t, defaultSigningMethod, c.alg.Alg(), "default signing method should be set")
	})

	t.Run("empty secrets fail", func(t *testing.T) {
		_, err := New(Config{AccessSecret: "", RefreshSecret: "r"})
		require.Error(t, err, "empty access secret must fail")

		_, err = New(Config{AccessSecret: "a", RefreshSecret: ""})
		require.Error(t, err, "empty refresh secret must fail")
	})

	t.Run("equal secrets fail", func(t *testing.T) {
		_, err := New(Config{AccessSecret: "same", RefreshSecret: "same"})
		require.Error(t, err, "shared secret must not be allowed")
	})
}

func Test_Codec_IssuePair(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "testuser@example.com",
		FullName: "Test User",
	}

	t.Run("return token pair", func(t *testing.T) {
		c := testCodec(t)

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.Access.ExpiresAt, time.Second)
		assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.Refresh.ExpiresAt, time.Second)
	})

	t.Run("access claims", func(t *testing.T) {
		c := testCodec(t)

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		claims, err := c.ParseAccess(pair.Access.Value)
		require.NoError(t, err, "just issued access token should parse")

		assert.Equal(t, testUser.ID, claims.UserID, "user ID in token should match")
		assert.Equal(t, testUser.Username, claims.Username)
		assert.Equal(t, testUser.Email, claims.Email)
		assert.Equal(t, testUser.FullName, claims.FullName)
		assert.NotEmpty(t, claims.ID, "token has to have jti")
		assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second, "issued at should be close to now")
		assert.WithinDuration(t, pair.Access.ExpiresAt, claims.ExpiresAt.Time, 0, "access expires at should match token pair")
	})

	t.Run("refresh claims", func(t *testing.T) {
		c := testCodec(t)

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		userID, err := c.ParseRefresh(pair.Refresh.Value)
		require.NoError(t, err, "just issued refresh token should parse")
		require.Equal(t, testUser.ID, userID)
	})

	t.Run("generate different tokens", func(t *testing.T) {
		c := testCodec(t)

		pair1, err := c.IssuePair(testUser)
		require.NoError(t, err)
		pair2, err := c.IssuePair(testUser)
		require.NoError(t, err)

		assert.NotEqual(t, pair1.Access.Value, pair2.Access.Value, "access tokens should be different")
		assert.NotEqual(t, pair1.Refresh.Value, pair2.Refresh.Value, "refresh tokens should be different")
	})
}

func Test_Codec_Parse(t *testing.T) {
	t.Parallel()

	testUser := models.User{ID: uuid.New(), Username: "testuser"}

	t.Run("not a token", func(t *testing.T) {
		c := testCodec(t)

		_, err := c.ParseAccess("invalid token")
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "garbage must map to ErrTokenInvalid")

		_, err = c.ParseRefresh("invalid token")
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "garbage must map to ErrTokenInvalid")
	})

	t.Run("expired token", func(t *testing.T) {
		c := testCodec(t)

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		// Move the codec clock past both expiries, no sleeping
		c.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

		_, err = c.ParseAccess(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "access token has to become expired")

		_, err = c.ParseRefresh(pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "refresh token has to become expired")
	})

	t.Run("token expires exactly at ttl", func(t *testing.T) {
		c := testCodec(t)
		issuedAt := time.Now().Truncate(time.Second)
		c.now = func() time.Time { return issuedAt }

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		c.now = func() time.Time { return issuedAt.Add(15 * time.Minute) }
		_, err = c.ParseAccess(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "token checked at issueTime+ttl must be expired")
	})

	t.Run("cross secret rejection", func(t *testing.T) {
		c := testCodec(t)

		other, err := New(Config{AccessSecret: "other-access", RefreshSecret: "other-refresh"})
		require.NoError(t, err)

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		_, err = other.ParseAccess(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "token signed with different secret must fail")
	})

	t.Run("access secret can't verify refresh", func(t *testing.T) {
		c := testCodec(t)

		pair, err := c.IssuePair(testUser)
		require.NoError(t, err)

		// A refresh token presented as an access token must not verify:
		// the kinds use independent secrets
		_, err = c.ParseAccess(pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)

		_, err = c.ParseRefresh(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("not signed token", func(t *testing.T) {
		c := testCodec(t)

		token := jwt.NewWithClaims(
			jwt.SigningMethodNone,
			AccessClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					ID:        uuid.NewString(),
					IssuedAt:  jwt.NewNumericDate(time.Now()),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
				},
				UserID: testUser.ID,
			},
		)
		access, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = c.ParseAccess(access)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "valid token with 'none' alg must fail")
	})
}
