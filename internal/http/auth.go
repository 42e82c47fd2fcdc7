package http

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"bank-assistant-go/internal/bot"
)

// AuthResponse wraps a freshly issued token.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Guest    bool   `json:"guest"`
}

// sessions maps issued tokens to their dialogue sessions. Tokens are mock
// bearer tokens; a real deployment would sign JWTs instead.
type sessions struct {
	mu      sync.Mutex
	byToken map[string]*bot.Session
}

func newSessions() *sessions {
	return &sessions{byToken: make(map[string]*bot.Session)}
}

func (s *sessions) issue(session *bot.Session) string {
	token := "mock_token_" + randomHex()
	s.mu.Lock()
	s.byToken[token] = session
	s.mu.Unlock()
	return token
}

func (s *sessions) get(token string) (*bot.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	return sess, ok
}

func (s *sessions) drop(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}

func randomHex() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// POST /v1/auth/guest
//
// Issues an unauthenticated session so the assistant can answer catalog
// questions before login.
func (s *Server) authGuest(c *gin.Context) {
	token := s.sessions.issue(&bot.Session{})
	c.JSON(200, AuthResponse{Token: token, Guest: true})
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	acct, err := s.store.Authenticate(input.Username, input.Password)
	if err != nil {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}

	token := s.sessions.issue(&bot.Session{Username: acct.Username, Authenticated: true})
	c.JSON(200, AuthResponse{Token: token, Username: acct.Username, Name: acct.Name})
}

// POST /v1/auth/logout
func (s *Server) authLogout(c *gin.Context) {
	if token, ok := bearerToken(c); ok {
		s.sessions.drop(token)
	}
	c.JSON(200, gin.H{"message": "logged_out"})
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// SessionMiddleware resolves the bearer token to a dialogue session and
// stores it in the request context.
func (s *Server) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_invalid"})
			return
		}
		sess, ok := s.sessions.get(token)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid_token"})
			return
		}
		c.Set("session", sess)
		c.Next()
	}
}

// RequireLogin rejects guest sessions. It must run after SessionMiddleware.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := c.MustGet("session").(*bot.Session)
		if !sess.Authenticated {
			c.AbortWithStatusJSON(403, gin.H{"error": "login_required"})
			return
		}
		c.Next()
	}
}
