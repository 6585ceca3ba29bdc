package client

import (
	"fmt"
	"slices"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Role names carried in the token's rol claim.
const (
	RoleAdmin   = "ADMIN"
	RoleAuditor = "AUDITOR"
)

// Session holds the signed-in user's access token and decoded claims. One
// session is built per process and shared by every Client.
type Session struct {
	mu     sync.RWMutex
	token  string
	userID string
	roles  []string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Init stores token and decodes its claims. The signature is not verified
// here; the backend verifies it on every request.
func (s *Session) Init(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("client: decode token: %w", err)
	}

	userID := claimString(claims, "user_id")
	if userID == "" {
		userID, _ = claims.GetSubject()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
	s.roles = claimRoles(claims["rol"])
	return nil
}

// SetUserID overrides the user id decoded from the token.
func (s *Session) SetUserID(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

// Clear drops the token and claims.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token, s.userID, s.roles = "", "", nil
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Roles returns a copy of the decoded roles.
func (s *Session) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

func (s *Session) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.roles, role)
}

func (s *Session) IsAdmin() bool   { return s.HasRole(RoleAdmin) }
func (s *Session) IsAuditor() bool { return s.HasRole(RoleAuditor) }

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return ""
	}
}

// claimRoles accepts a single role string or a list of roles.
func claimRoles(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
