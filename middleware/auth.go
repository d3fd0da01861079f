package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

// Context keys set by the auth middleware
const (
	ContextSubjectID       = "subject_id"
	ContextSubjectRole     = "subject_role"
	ContextExternalID      = "external_id"
	ContextAccessToken     = "access_token"
	ContextCurrentCustomer = "current_customer"
	ContextCurrentMechanic = "current_mechanic"
)

// Subject roles
const (
	RoleCustomer = "customer"
	RoleMechanic = "mechanic"
)

// verifyTimeout bounds token verification, which may hit the identity
// provider's JWKS endpoint.
const verifyTimeout = 5 * time.Second

// VerifiedSubject is the identity extracted from a bearer token,
// regardless of which credential format carried it.
type VerifiedSubject struct {
	ID         uint
	Role       string
	ExternalID string // identity provider user ID, empty for local tokens
}

// TokenVerifier validates one credential format
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*VerifiedSubject, error)
}

// CustomClaims contains the custom data attached to federated tokens.
// The identity provider stores the application role and database id as
// custom user claims when an account is created.
type CustomClaims struct {
	Role string `json:"role"`
	DBID uint   `json:"db_id"`
}

// Validate satisfies the validator.CustomClaims interface
func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// auth0Verifier validates federated tokens issued by Auth0
type auth0Verifier struct {
	validator *validator.Validator
}

// newAuth0Verifier builds the federated verifier, or nil if the
// identity provider is not configured.
func newAuth0Verifier(cfg *config.Config) *auth0Verifier {
	if !cfg.HasAuth0() {
		return nil
	}

	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		log.Printf("Failed to parse the issuer url: %v", err)
		return nil
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Printf("Failed to set up the jwt validator: %v", err)
		return nil
	}

	return &auth0Verifier{validator: jwtValidator}
}

func (v *auth0Verifier) Verify(ctx context.Context, token string) (*VerifiedSubject, error) {
	parsed, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.(*validator.ValidatedClaims)
	if !ok {
		return nil, errors.New("unexpected claims type from validator")
	}

	subject := &VerifiedSubject{
		ExternalID: claims.RegisteredClaims.Subject,
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		subject.ID = custom.DBID
		subject.Role = custom.Role
	}
	return subject, nil
}

// localVerifier validates locally signed HS256 tokens
type localVerifier struct {
	tokens *services.TokenService
}

func (v *localVerifier) Verify(ctx context.Context, token string) (*VerifiedSubject, error) {
	subjectID, role, err := v.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &VerifiedSubject{ID: subjectID, Role: role}, nil
}

// Authenticator verifies bearer tokens against an ordered list of
// credential formats; the first verifier to accept a token wins.
type Authenticator struct {
	verifiers []TokenVerifier
}

// NewAuthenticator builds the production verifier chain: the federated
// format is tried first, the locally signed format is the fallback.
func NewAuthenticator(cfg *config.Config) *Authenticator {
	var verifiers []TokenVerifier
	if auth0 := newAuth0Verifier(cfg); auth0 != nil {
		verifiers = append(verifiers, auth0)
	} else {
		log.Printf("Identity provider not configured, accepting local tokens only")
	}
	verifiers = append(verifiers, &localVerifier{tokens: services.NewTokenService(cfg)})
	return &Authenticator{verifiers: verifiers}
}

// NewAuthenticatorWithVerifiers builds an authenticator from explicit
// verifiers (primarily for testing)
func NewAuthenticatorWithVerifiers(verifiers ...TokenVerifier) *Authenticator {
	return &Authenticator{verifiers: verifiers}
}

// authenticate extracts and verifies the bearer token, storing the
// resolved subject in the context. On failure it writes a 401 response
// and reports false.
func (a *Authenticator) authenticate(c *gin.Context) (*VerifiedSubject, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is missing!"})
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format"})
		return nil, false
	}
	token := parts[1]

	ctx, cancel := context.WithTimeout(c.Request.Context(), verifyTimeout)
	defer cancel()

	var subject *VerifiedSubject
	var lastErr error
	for _, verifier := range a.verifiers {
		subject, lastErr = verifier.Verify(ctx, token)
		if lastErr == nil {
			break
		}
	}
	if subject == nil {
		// The chain ends with the local verifier, so lastErr is its
		// typed error when every format rejected the token.
		switch {
		case errors.Is(lastErr, services.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has expired!"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		}
		return nil, false
	}

	c.Set(ContextSubjectID, subject.ID)
	c.Set(ContextSubjectRole, subject.Role)
	c.Set(ContextExternalID, subject.ExternalID)
	c.Set(ContextAccessToken, token)
	return subject, true
}

// RequireAuth accepts any valid subject
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireCustomer accepts only customer tokens whose subject resolves
// to a persisted customer
func (a *Authenticator) RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := a.authenticate(c)
		if !ok {
			return
		}
		if subject.Role != RoleCustomer {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Customer token required"})
			return
		}
		if subject.ID == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Token has no linked account"})
			return
		}

		var customer models.Customer
		if err := config.GetDB().First(&customer, subject.ID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Customer not found."})
			return
		}

		c.Set(ContextCurrentCustomer, &customer)
		c.Next()
	}
}

// RequireMechanic accepts only mechanic tokens whose subject resolves
// to a persisted mechanic
func (a *Authenticator) RequireMechanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := a.authenticate(c)
		if !ok {
			return
		}
		if subject.Role != RoleMechanic {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Mechanic token required"})
			return
		}
		if subject.ID == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Token has no linked account"})
			return
		}

		var mechanic models.Mechanic
		if err := config.GetDB().First(&mechanic, subject.ID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Mechanic not found."})
			return
		}

		c.Set(ContextCurrentMechanic, &mechanic)
		c.Next()
	}
}

// GetCurrentCustomer extracts the resolved customer from the Gin context
func GetCurrentCustomer(c *gin.Context) (*models.Customer, error) {
	value, exists := c.Get(ContextCurrentCustomer)
	if !exists {
		return nil, errors.New("customer not found in context")
	}
	customer, ok := value.(*models.Customer)
	if !ok {
		return nil, errors.New("customer in context has unexpected type")
	}
	return customer, nil
}

// GetCurrentMechanic extracts the resolved mechanic from the Gin context
func GetCurrentMechanic(c *gin.Context) (*models.Mechanic, error) {
	value, exists := c.Get(ContextCurrentMechanic)
	if !exists {
		return nil, errors.New("mechanic not found in context")
	}
	mechanic, ok := value.(*models.Mechanic)
	if !ok {
		return nil, errors.New("mechanic in context has unexpected type")
	}
	return mechanic, nil
}

// GetExternalID extracts the identity provider user ID from the Gin
// context; it is empty when the request carried a local token
func GetExternalID(c *gin.Context) string {
	return c.GetString(ContextExternalID)
}

// GetAccessToken extracts the raw bearer token from the Gin context
func GetAccessToken(c *gin.Context) (string, error) {
	token := c.GetString(ContextAccessToken)
	if token == "" {
		return "", errors.New("access token not found in context")
	}
	return token, nil
}
