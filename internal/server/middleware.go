package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/terra-dev/terra/internal/auth"
)

const (
	bearerPrefix      = "Bearer "
	sessionCookieName = "_auth"
	sessionKey        = "session"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrNoSession         = errors.New("no session")
	ErrInsufficientTier  = errors.New("insufficient tier")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the session attached by sessionMiddleware, if any
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// sessionMiddleware attaches session data when the request carries a valid
// bearer test key or session cookie. It never rejects a request; RequireTier does.
// A request that presents an Authorization header is judged on that header alone.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			key, err := extractBearerToken(header)
			if err == nil && s.auth.BearerValid(key) {
				setSession(c, &auth.SessionData{
					User:   "bearer",
					Tier:   auth.Server,
					Method: auth.MethodBearer,
				})
			} else {
				s.logger.Debug().Err(err).Msg("Rejected bearer credentials")
			}
			c.Next()
			return
		}

		if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
			session, err := s.auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				s.logger.Debug().Err(err).Msg("Ignoring invalid session cookie")
			} else {
				setSession(c, session)
			}
		}

		c.Next()
	}
}

// RequireTier rejects requests without a session (401) or whose session tier
// is below need (403)
func RequireTier(need auth.Tier, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, exists := GetSessionData(c)
		if !exists {
			respondWithError(c, log, http.StatusUnauthorized, ErrNoSession, "Unauthorized")
			return
		}

		if !sessionData.Tier.Satisfies(need) {
			respondWithError(c, log, http.StatusForbidden, ErrInsufficientTier, "Forbidden")
			return
		}

		c.Next()
	}
}

// newLoginLimiter limits login attempts per client IP. One-time access codes
// are short, so guessing must be slowed down.
func newLoginLimiter(perMinute int, client *redis.Client) (gin.HandlerFunc, error) {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }, nil
	}

	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	}

	var store limiter.Store
	if client != nil {
		var err error
		store, err = limiterRedis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:          "ratelimit:login",
			CleanUpInterval: 5 * time.Minute,
		})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStore()
	}

	return mgin.NewMiddleware(limiter.New(store, rate), mgin.WithLimitReachedHandler(func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts. Please try again later."})
		c.Abort()
	})), nil
}

// newValidator returns the request validator with custom rules registered
func newValidator() (*validator.Validate, error) {
	validate := validator.New()

	// Project names are shown in tables and used as keys: printable, no control characters
	err := validate.RegisterValidation("projectname", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if strings.TrimSpace(value) != value {
			return false
		}
		for _, char := range value {
			if char < 0x20 || char == 0x7f {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register projectname validation: %w", err)
	}

	return validate, nil
}
