package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"broker_portal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type staticJWTConfig string

func (s staticJWTConfig) GetJWTAccessSecret() string { return string(s) }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", AuthRequired(staticJWTConfig(secret)), func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		OK(c, gin.H{"brokerId": id.BrokerID().String(), "email": id.Email()})
	})
	return engine
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	brokerID := uuid.New()
	engine := newAuthEngine("secret")
	token := signToken(t, "secret", jwt.MapClaims{
		"sub":   brokerID.String(),
		"email": "broker@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), brokerID.String())
	assert.Contains(t, rec.Body.String(), "broker@example.com")
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	engine := newAuthEngine("secret")

	cases := map[string]string{
		"missing header": "",
		"wrong secret": "Bearer " + signToken(t, "other", jwt.MapClaims{
			"sub": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix(),
		}),
		"expired": "Bearer " + signToken(t, "secret", jwt.MapClaims{
			"sub": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"no expiry": "Bearer " + signToken(t, "secret", jwt.MapClaims{
			"sub": uuid.NewString(),
		}),
		"subject not a uuid": "Bearer " + signToken(t, "secret", jwt.MapClaims{
			"sub": "broker-1", "exp": time.Now().Add(time.Hour).Unix(),
		}),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, nil)
	engine := gin.New()
	engine.GET("/ping", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestHandleErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("client not found"), http.StatusNotFound},
		{apperr.Validation("bad term"), http.StatusUnprocessableEntity},
		{apperr.Unavailable("briefings disabled"), http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		require.True(t, HandleError(c, tc.err))
		assert.Equal(t, tc.want, rec.Code)
	}
}
