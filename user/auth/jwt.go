package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coachhub/backend/srvcerror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang-jwt/jwt/v5/request"
	"github.com/google/uuid"
)

type JwtClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	UUID     string `json:"uuid,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type ClaimsKeyType string

var CtxJwtClaimsKey ClaimsKeyType = "jwtClaims"

const tokenTTL = 24 * time.Hour

func GenerateJWT(username, email string, userUuid uuid.UUID, role Role, jwtKey []byte) (string, error) {
	now := time.Now()
	claims := &JwtClaims{
		Username: username,
		Email:    email,
		UUID:     userUuid.String(),
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUuid.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ValidateJWT(tokenStr string, jwtKey []byte) (*JwtClaims, error) {
	claims := &JwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("invalid token signature")
		}
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// IdentityFromClaims converts validated claims into an Identity.
func IdentityFromClaims(claims *JwtClaims) (Identity, error) {
	if claims == nil {
		return Identity{}, srvcerror.ErrUnauthenticated()
	}
	userUuid, err := uuid.Parse(claims.UUID)
	if err != nil {
		return Identity{}, srvcerror.ErrUnauthenticated().SetDebug(fmt.Errorf("bad uuid claim: %w", err))
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, srvcerror.ErrUnauthenticated().SetDebug(err)
	}
	return Identity{UserUUID: userUuid, Email: claims.Email, Role: role}, nil
}

// IdentityFromCtx returns the caller identity placed in ctx by the JWT middleware.
func IdentityFromCtx(ctx context.Context) (Identity, error) {
	claims, _ := ctx.Value(CtxJwtClaimsKey).(*JwtClaims)
	return IdentityFromClaims(claims)
}

// GetJwtAuthMiddleware validates JWT token and adds the claims to the request context
func GetJwtAuthMiddleware(jwtKey []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, err := request.BearerExtractor{}.ExtractToken(r)
			if err != nil {
				if errors.Is(err, request.ErrNoTokenInRequest) {
					ctx := context.WithValue(r.Context(), CtxJwtClaimsKey, (*JwtClaims)(nil))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := ValidateJWT(token, jwtKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CtxJwtClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
