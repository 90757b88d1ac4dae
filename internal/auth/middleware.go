package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Web3AuthWallet is a wallet entry in the ID token.
type Web3AuthWallet struct {
	PublicKey string `json:"public_key"`
	Type      string `json:"type"`
	Curve     string `json:"curve,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Claims is the subset of the Web3Auth ID token the service reads.
type Claims struct {
	jwt.RegisteredClaims
	Email   string           `json:"email,omitempty"`
	Name    string           `json:"name,omitempty"`
	Wallets []Web3AuthWallet `json:"wallets,omitempty"`
	// Address is set by tokens minted for local development.
	Address string `json:"address,omitempty"`
}

// Addresses returns every valid account address carried by the token.
func (c *Claims) Addresses() []common.Address {
	var out []common.Address
	if common.IsHexAddress(c.Address) {
		out = append(out, common.HexToAddress(c.Address))
	}
	for _, w := range c.Wallets {
		if common.IsHexAddress(w.Address) {
			out = append(out, common.HexToAddress(w.Address))
		}
	}
	return out
}

// Config selects how tokens are verified.
type Config struct {
	JWKSURL  string
	Issuer   string
	Audience string
	// HMACSecret verifies HS256 tokens when no JWKS endpoint is set.
	HMACSecret string
}

// Authenticator validates bearer tokens and resolves the acting account.
type Authenticator struct {
	keyfunc  jwt.Keyfunc
	methods  []string
	issuer   string
	audience string
	jwks     *keyfunc.JWKS
	logger   *zap.Logger
}

// NewAuthenticator builds an Authenticator from cfg. A JWKS endpoint wins
// over a shared secret.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	log := logger.ForComponent(logger.ComponentAuth)

	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:  time.Hour,
			RefreshRateLimit: time.Minute,
			RefreshTimeout:   10 * time.Second,
			RefreshErrorHandler: func(err error) {
				log.Error("JWKS refresh error", zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS: %w", err)
		}
		log.Info("JWKS initialized", zap.String("jwks_url", cfg.JWKSURL), zap.String("issuer", cfg.Issuer))

		a := NewAuthenticatorWithKeyfunc(jwks.Keyfunc, []string{"RS256", "ES256"}, cfg.Issuer, cfg.Audience)
		a.jwks = jwks
		return a, nil
	}

	if cfg.HMACSecret != "" {
		secret := []byte(cfg.HMACSecret)
		kf := func(*jwt.Token) (interface{}, error) { return secret, nil }
		return NewAuthenticatorWithKeyfunc(kf, []string{"HS256"}, cfg.Issuer, cfg.Audience), nil
	}

	return nil, ErrNoKeySource
}

// NewAuthenticatorWithKeyfunc builds an Authenticator around kf. Only the
// listed signing methods are accepted.
func NewAuthenticatorWithKeyfunc(kf jwt.Keyfunc, methods []string, issuer, audience string) *Authenticator {
	return &Authenticator{
		keyfunc:  kf,
		methods:  methods,
		issuer:   issuer,
		audience: audience,
		logger:   logger.ForComponent(logger.ComponentAuth),
	}
}

// Close stops the background JWKS refresh.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// ValidateToken parses and verifies a raw token.
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(a.methods),
		jwt.WithLeeway(time.Minute),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, a.keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAccount validates the bearer token and stores the acting account
// in the gin context. The X-Account-Address header picks one of the
// token's wallets; without it the token must carry exactly one.
func (a *Authenticator) RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "No authentication provided")
			return
		}

		claims, err := a.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			a.logger.Debug("JWT token validation failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("correlation_id", c.GetHeader(constants.CorrelationIDHeader)))
			abort(c, http.StatusUnauthorized, ErrInvalidToken.Error())
			return
		}

		account, err := selectAccount(claims.Addresses(), c.GetHeader(constants.AccountAddressHeader))
		if err != nil {
			abort(c, http.StatusForbidden, err.Error())
			return
		}

		c.Set(constants.SubjectKey, claims.Subject)
		c.Set(constants.AccountAddressKey, account)
		c.Next()
	}
}

func selectAccount(addresses []common.Address, requested string) (common.Address, error) {
	if requested == "" {
		if len(addresses) == 1 {
			return addresses[0], nil
		}
		return common.Address{}, ErrNoAccount
	}
	if !common.IsHexAddress(requested) {
		return common.Address{}, fmt.Errorf("invalid %s header", constants.AccountAddressHeader)
	}
	want := common.HexToAddress(requested)
	for _, addr := range addresses {
		if addr == want {
			return addr, nil
		}
	}
	return common.Address{}, ErrAccountNotInToken
}

// AccountSource reports the account the connected wallet exposes.
type AccountSource interface {
	CurrentAccount(ctx context.Context) (common.Address, error)
}

// WalletAccount resolves the acting account from the wallet SDK instead
// of a token. It is used on local stages where no identity provider runs.
func WalletAccount(source AccountSource) gin.HandlerFunc {
	log := logger.ForComponent(logger.ComponentAuth)
	return func(c *gin.Context) {
		account, err := source.CurrentAccount(c.Request.Context())
		if err != nil {
			log.Warn("Failed to read current wallet account", zap.Error(err))
			abort(c, http.StatusUnauthorized, ErrNoAccount.Error())
			return
		}
		c.Set(constants.AccountAddressKey, account)
		c.Next()
	}
}

// AccountAddress returns the acting account stored by the middleware.
func AccountAddress(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(constants.AccountAddressKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
