package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer     = "course-material-service"
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour

	accessPrefix  = "access:"
	refreshPrefix = "refresh:"
)

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"access_exp"`
	RefreshExp   time.Time `json:"refresh_exp"`
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var (
	loadSecretsOnce sync.Once
	accessSecret    []byte
	refreshSecret   []byte
	loadSecretsErr  error
)

func ensureSecrets() error {
	loadSecretsOnce.Do(func() {
		access := os.Getenv("ACCESS_SECRET")
		refresh := os.Getenv("REFRESH_SECRET")

		if len(access) < 32 || len(refresh) < 32 {
			loadSecretsErr = fmt.Errorf("ACCESS_SECRET and REFRESH_SECRET must be configured and at least 32 characters")
			return
		}

		accessSecret = []byte(access)
		refreshSecret = []byte(refresh)
	})

	return loadSecretsErr
}

func newClaims(email, role string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
}

func signToken(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// IssueTokenPair mints a short-lived access token and a long-lived refresh
// token for a user, recording both JTIs in Redis so they can be revoked
// before expiry.
func IssueTokenPair(email, role string, rdb *redis.Client) (*TokenPair, error) {
	if err := ensureSecrets(); err != nil {
		return nil, err
	}

	now := time.Now()
	accessClaims := newClaims(email, role, now, accessTokenTTL)
	refreshClaims := newClaims(email, role, now, refreshTokenTTL)

	accessString, err := signToken(accessClaims, accessSecret)
	if err != nil {
		return nil, err
	}
	refreshString, err := signToken(refreshClaims, refreshSecret)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	pipe := rdb.Pipeline()
	pipe.Set(ctx, accessPrefix+accessClaims.ID, email, accessTokenTTL)
	pipe.Set(ctx, refreshPrefix+refreshClaims.ID, email, refreshTokenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		AccessExp:    accessClaims.ExpiresAt.Time,
		RefreshExp:   refreshClaims.ExpiresAt.Time,
	}, nil
}

func ValidateAccessToken(tokenString string, rdb *redis.Client) (*Claims, error) {
	if err := ensureSecrets(); err != nil {
		return nil, err
	}
	return validateToken(tokenString, accessSecret, accessPrefix, rdb)
}

func ValidateRefreshToken(tokenString string, rdb *redis.Client) (*Claims, error) {
	if err := ensureSecrets(); err != nil {
		return nil, err
	}
	return validateToken(tokenString, refreshSecret, refreshPrefix, rdb)
}

func validateToken(tokenString string, secret []byte, prefix string, rdb *redis.Client) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject non-HMAC methods to prevent algorithm confusion.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	// A JTI missing from Redis means the token was revoked or aged out.
	exists, err := rdb.Exists(context.Background(), prefix+claims.ID).Result()
	if err != nil || exists != 1 {
		return nil, errors.New("token revoked or expired")
	}

	return claims, nil
}

// RevokeToken invalidates a single token by deleting its JTI record.
func RevokeToken(jti string, isRefresh bool, rdb *redis.Client) error {
	prefix := accessPrefix
	if isRefresh {
		prefix = refreshPrefix
	}
	return rdb.Del(context.Background(), prefix+jti).Err()
}

// RevokeAllUserTokens deletes every live access and refresh token belonging
// to a user. Used on logout and on role changes.
func RevokeAllUserTokens(email string, rdb *redis.Client) error {
	ctx := context.Background()
	pipe := rdb.Pipeline()

	for _, prefix := range []string{accessPrefix, refreshPrefix} {
		iter := rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()
			owner, err := rdb.Get(ctx, key).Result()
			if err == nil && owner == email {
				pipe.Del(ctx, key)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
