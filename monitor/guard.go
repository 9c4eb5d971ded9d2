package monitor

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// GuardConfig configures a TokenGuard.
type GuardConfig struct {
	// JWTKey is the HMAC secret for Bearer tokens. Empty disables JWT
	// authentication.
	JWTKey []byte

	// Issuer, when set, must match the token's iss claim.
	Issuer string

	// Audience, when set, must be among the token's aud values.
	Audience string

	// APIKeys are static keys accepted via the API key header. Only their
	// SHA-256 digests are retained, and comparison is constant time.
	APIKeys []string

	// APIKeyHeader is the header carrying an API key.
	// Default: "X-API-Key"
	APIKeyHeader string
}

// TokenGuard authenticates requests to the mutating monitor endpoints with
// a Bearer JWT, a static API key, or both.
type TokenGuard struct {
	config    GuardConfig
	keyHashes [][sha256.Size]byte
}

// NewTokenGuard creates a guard. At least one credential source must be
// configured.
func NewTokenGuard(config GuardConfig) (*TokenGuard, error) {
	if config.APIKeyHeader == "" {
		config.APIKeyHeader = "X-API-Key"
	}
	if len(config.JWTKey) == 0 && len(config.APIKeys) == 0 {
		return nil, ErrNoGuardCredentials
	}

	hashes := make([][sha256.Size]byte, len(config.APIKeys))
	for i, key := range config.APIKeys {
		hashes[i] = sha256.Sum256([]byte(key))
	}
	config.APIKeys = nil // retain digests only

	return &TokenGuard{config: config, keyHashes: hashes}, nil
}

// Authorize checks the request's credentials. An API key header is decided
// on its own when API keys are configured; otherwise the Bearer token is
// validated.
func (g *TokenGuard) Authorize(r *http.Request) error {
	if key := r.Header.Get(g.config.APIKeyHeader); key != "" && len(g.keyHashes) > 0 {
		return g.checkAPIKey(key)
	}
	if len(g.config.JWTKey) > 0 {
		return g.checkJWT(r.Header.Get("Authorization"))
	}
	return ErrUnauthorized
}

// Middleware rejects unauthenticated requests with 401 before invoking
// next.
func (g *TokenGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Authorize(r); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *TokenGuard) checkAPIKey(presented string) error {
	digest := sha256.Sum256([]byte(strings.TrimSpace(presented)))
	for _, want := range g.keyHashes {
		if subtle.ConstantTimeCompare(digest[:], want[:]) == 1 {
			return nil
		}
	}
	return ErrUnauthorized
}

func (g *TokenGuard) checkJWT(header string) error {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ErrUnauthorized
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, prefix))

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if g.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.config.Issuer))
	}
	if g.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(g.config.Audience))
	}

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return g.config.JWTKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}
	return nil
}
