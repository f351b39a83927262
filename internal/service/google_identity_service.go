package service

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/authform/authform/internal/config"

	"github.com/cenkalti/backoff/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCertsMaxAge        = time.Hour
	defaultMinRefreshInterval = time.Minute
)

type GoogleIdentityServiceConfig struct {
	ClientID string
	CertsURL string
	Issuers  []string
	// MinRefreshInterval bounds how often an unknown key id may trigger a
	// fetch. Defaults to one minute.
	MinRefreshInterval time.Duration
	Now                func() time.Time
}

type googleIDTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// GoogleIdentityService verifies ID tokens issued by Google against the
// published signing keys. Keys are cached for the max-age the endpoint reports.
// Concurrent refreshes share one fetch and start at most once per
// MinRefreshInterval.
type GoogleIdentityService struct {
	config      GoogleIdentityServiceConfig
	client      *http.Client
	mutex       sync.RWMutex
	keys        map[string]*rsa.PublicKey
	expires     time.Time
	lastRefresh time.Time
	refresh     singleflight.Group
}

func NewGoogleIdentityService(config GoogleIdentityServiceConfig) *GoogleIdentityService {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.MinRefreshInterval <= 0 {
		config.MinRefreshInterval = defaultMinRefreshInterval
	}
	return &GoogleIdentityService{
		config: config,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

func (google *GoogleIdentityService) Init() error {
	if google.config.ClientID == "" {
		return errors.New("google client id is required")
	}
	if google.config.CertsURL == "" {
		return errors.New("google certs url is required")
	}
	if len(google.config.Issuers) == 0 {
		return errors.New("at least one issuer is required")
	}
	google.client = &http.Client{
		Timeout: 10 * time.Second,
	}
	return nil
}

func (google *GoogleIdentityService) VerifyIDToken(ctx context.Context, raw string) (config.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(google.config.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(google.config.Now),
	)

	var claims googleIDTokenClaims

	_, err := parser.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token has no key id")
		}
		return google.getKey(ctx, kid)
	})

	if err != nil {
		return config.Claims{}, fmt.Errorf("invalid id token: %w", err)
	}

	if !slices.Contains(google.config.Issuers, claims.Issuer) {
		return config.Claims{}, fmt.Errorf("invalid id token issuer: %s", claims.Issuer)
	}

	return config.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (google *GoogleIdentityService) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := google.config.Now()

	google.mutex.RLock()
	key, ok := google.keys[kid]
	fresh := now.Before(google.expires)
	recent := now.Sub(google.lastRefresh) < google.config.MinRefreshInterval
	google.mutex.RUnlock()

	if ok && (fresh || recent) {
		return key, nil
	}

	if recent {
		return nil, fmt.Errorf("unknown signing key: %s", kid)
	}

	// Unknown kids trigger a refresh since Google rotates keys
	_, err, _ := google.refresh.Do("keys", func() (any, error) {
		google.mutex.Lock()
		if google.config.Now().Sub(google.lastRefresh) < google.config.MinRefreshInterval {
			google.mutex.Unlock()
			return nil, nil
		}
		google.lastRefresh = google.config.Now()
		google.mutex.Unlock()

		return nil, google.refreshKeys(context.WithoutCancel(ctx))
	})

	if err != nil {
		return nil, err
	}

	google.mutex.RLock()
	defer google.mutex.RUnlock()

	key, ok = google.keys[kid]

	if !ok {
		return nil, fmt.Errorf("unknown signing key: %s", kid)
	}

	return key, nil
}

func (google *GoogleIdentityService) refreshKeys(ctx context.Context) error {
	log.Debug().Str("url", google.config.CertsURL).Msg("Fetching Google signing keys")

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.Multiplier = 2
	exp.Reset()

	type result struct {
		set    jsonWebKeySet
		maxAge time.Duration
	}

	operation := func() (result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, google.config.CertsURL, nil)
		if err != nil {
			return result{}, backoff.Permanent(err)
		}

		res, err := google.client.Do(req)
		if err != nil {
			return result{}, err
		}
		defer res.Body.Close()

		if res.StatusCode >= 400 && res.StatusCode < 500 {
			return result{}, backoff.Permanent(fmt.Errorf("request failed with status: %s", res.Status))
		}

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return result{}, fmt.Errorf("request failed with status: %s", res.Status)
		}

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return result{}, err
		}

		var set jsonWebKeySet

		if err := json.Unmarshal(body, &set); err != nil {
			return result{}, backoff.Permanent(err)
		}

		return result{set: set, maxAge: parseMaxAge(res.Header.Get("Cache-Control"))}, nil
	}

	fetched, err := backoff.Retry(ctx, operation, backoff.WithBackOff(exp), backoff.WithMaxTries(3))

	if err != nil {
		return fmt.Errorf("failed to fetch signing keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(fetched.set.Keys))

	for _, jwk := range fetched.set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		key, err := parseRSAPublicKey(jwk)
		if err != nil {
			log.Warn().Err(err).Str("kid", jwk.Kid).Msg("Skipping invalid signing key")
			continue
		}
		keys[jwk.Kid] = key
	}

	google.mutex.Lock()
	google.keys = keys
	google.expires = google.config.Now().Add(fetched.maxAge)
	google.mutex.Unlock()

	log.Debug().Int("keys", len(keys)).Dur("maxAge", fetched.maxAge).Msg("Cached Google signing keys")

	return nil
}

func parseRSAPublicKey(jwk jsonWebKey) (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}

	e, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	exponent := new(big.Int).SetBytes(e)

	if !exponent.IsInt64() || exponent.Int64() < 3 {
		return nil, errors.New("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(exponent.Int64()),
	}, nil
}

func parseMaxAge(cacheControl string) time.Duration {
	for directive := range strings.SplitSeq(cacheControl, ",") {
		value, found := strings.CutPrefix(strings.TrimSpace(directive), "max-age=")
		if !found {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultCertsMaxAge
}
