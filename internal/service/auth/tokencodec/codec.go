package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 10 * 24 * time.Hour
)

// Access token carries enough identity to authorize a request
// without touching the database for every claim
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"uid"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
}

// Refresh token carries the user id only
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

type Config struct {
	// Secrets to sign tokens with. Both required and must differ:
	// a leaked access secret must not allow forging refresh tokens
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then defaults are used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies the two token kinds. It is stateless and
// safe for concurrent use.
type Codec struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	// Overridable in tests to check expiry without sleeping
	now func() time.Time
}

func New(cfg Config) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &Codec{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// IssuePair signs a fresh access and refresh token for the user.
// The two signings are independent, no shared state between them.
func (c *Codec) IssuePair(user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := c.IssueAccess(user)
	if err != nil {
		return pair, err
	}

	refresh, err := c.IssueRefresh(user.ID)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (c *Codec) IssueAccess(user models.User) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(c.accessTTL)

	token := jwt.NewWithClaims(
		c.alg,
		AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
		},
	)

	signed, err := token.SignedString(c.accessKey)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (c *Codec) IssueRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(c.refreshTTL)

	token := jwt.NewWithClaims(
		c.alg,
		RefreshClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
		},
	)

	signed, err := token.SignedString(c.refreshKey)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// ParseAccess verifies signature and expiry and returns the claims.
// Any failure maps to apperrors.ErrTokenInvalid: whether the token is
// forged or merely expired is not actionable for the caller.
func (c *Codec) ParseAccess(access string) (AccessClaims, error) {
	claims := &AccessClaims{}
	err := c.parse(access, claims, c.accessKey)
	return *claims, err
}

// ParseRefresh verifies signature and expiry and returns the user id claim
func (c *Codec) ParseRefresh(refresh string) (uuid.UUID, error) {
	claims := &RefreshClaims{}
	if err := c.parse(refresh, claims, c.refreshKey); err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func (c *Codec) parse(token string, claims jwt.Claims, key []byte) error {
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	return nil
}
