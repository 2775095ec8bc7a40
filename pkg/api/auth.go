package api

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

const (
	sessionCookie = "session_id"
	sessionTTL    = 24 * time.Hour
	sessionCtxKey = "session"
	verifyTimeout = 15 * time.Second
)

// Session holds the tracker credentials behind one login. Credentials are
// kept in memory only, for the lifetime of the session, because every
// tracker call authenticates per request.
type Session struct {
	Username    string
	Password    string
	DisplayName string
	ExpiresAt   time.Time
}

// SessionStore is an in-memory session registry. Expired sessions are
// dropped lazily on lookup.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

// Create registers a session and returns its token.
func (s *SessionStore) Create(username, password, displayName string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = Session{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		ExpiresAt:   time.Now().Add(sessionTTL),
	}
	s.mu.Unlock()
	return token
}

// Get returns a live session by token.
func (s *SessionStore) Get(token string) (Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.Delete(token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CredentialVerifier validates tracker credentials and returns the account
// display name. The API server verifies at login time with a live tracker
// call.
type CredentialVerifier func(ctx context.Context, username, password string) (string, error)

// requireAuth resolves the caller's session from the cookie, falling back to
// default credentials from the environment (JIRA_USER / JIRA_PASSWORD) when
// configured. Unauthenticated requests get 401.
func (s *Server) requireAuth(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if session, ok := s.sessions.Get(token); ok {
			c.Set(sessionCtxKey, session)
			c.Next()
			return
		}
	}

	if user, pass := os.Getenv("JIRA_USER"), os.Getenv("JIRA_PASSWORD"); user != "" && pass != "" {
		c.Set(sessionCtxKey, Session{Username: user, Password: pass, DisplayName: user})
		c.Next()
		return
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "not authenticated"})
}

// currentSession returns the session placed by requireAuth.
func currentSession(c *gin.Context) Session {
	if v, ok := c.Get(sessionCtxKey); ok {
		if session, ok := v.(Session); ok {
			return session
		}
	}
	return Session{}
}

// loginHandler handles POST /api/auth/login.
func (s *Server) loginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), verifyTimeout)
	defer cancel()

	displayName, err := s.verify(ctx, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.LoginResponse{
			Success: false,
			Message: "invalid credentials",
		})
		return
	}

	token := s.sessions.Create(req.Username, req.Password, displayName)
	c.SetCookie(sessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "connected as " + displayName,
		Token:   token,
	})
}

// logoutHandler handles POST /api/auth/logout.
func (s *Server) logoutHandler(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// sessionHandler handles GET /api/auth/session.
func (s *Server) sessionHandler(c *gin.Context) {
	info := models.SessionInfo{TrackerURL: s.cfg.TrackerURL}

	if token, err := c.Cookie(sessionCookie); err == nil {
		if session, ok := s.sessions.Get(token); ok {
			info.Authenticated = true
			info.Username = session.Username
		}
	}
	if !info.Authenticated {
		if user := os.Getenv("JIRA_USER"); user != "" && os.Getenv("JIRA_PASSWORD") != "" {
			info.Authenticated = true
			info.Username = user
		}
	}

	c.JSON(http.StatusOK, info)
}
