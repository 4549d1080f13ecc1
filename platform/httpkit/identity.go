// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated broker.
// Handlers read it without depending on how the token was parsed.
type Identity interface {
	// BrokerID returns the authenticated broker's ID (token subject).
	BrokerID() uuid.UUID
	// Email returns the broker's email claim, if present.
	Email() string
	// IsAuthenticated returns true if the request carried a valid token.
	IsAuthenticated() bool
}

type identity struct {
	brokerID      uuid.UUID
	email         string
	authenticated bool
}

func (i *identity) BrokerID() uuid.UUID   { return i.brokerID }
func (i *identity) Email() string         { return i.email }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// NewIdentity builds an authenticated identity. Used by tests and adapters
// that authenticate outside the JWT middleware.
func NewIdentity(brokerID uuid.UUID, email string) Identity {
	return &identity{brokerID: brokerID, email: email, authenticated: true}
}

// SetIdentity stores the broker identity on the gin context.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(ContextBrokerIDKey, id.BrokerID())
	c.Set(ContextEmailKey, id.Email())
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if broker info is not present.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextBrokerIDKey)
	if !ok {
		return &identity{}
	}

	brokerID, ok := raw.(uuid.UUID)
	if !ok || brokerID == uuid.Nil {
		return &identity{}
	}

	email := c.GetString(ContextEmailKey)
	return &identity{brokerID: brokerID, email: email, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the broker is not authenticated, it aborts with 401 and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}
