package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/calebrws/investor-portal/internal/entity"
)

const SessionName = "portal-session"

const (
	isAuthKey       = "is_authenticated"
	userIDKey       = "user_id"
	investorIDKey   = "investor_id"
	investorNameKey = "investor_name"
	isAdminKey      = "is_admin"
)

// SessionUser is what the session caches and handlers read from context.
type SessionUser struct {
	ID           string
	InvestorID   string
	InvestorName string
	IsAdmin      bool
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

type SessionManager struct {
	Store *sessions.CookieStore
}

func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{Store: store}
}

func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, user *entity.User) error {
	sess, _ := m.Store.Get(r, SessionName)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = user.ID
	sess.Values[isAdminKey] = user.IsAdmin
	if user.InvestorID != nil {
		sess.Values[investorIDKey] = *user.InvestorID
	}
	if user.InvestorName != nil {
		sess.Values[investorNameKey] = *user.InvestorName
	}
	return sess.Save(r, w)
}

func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.Store.Get(r, SessionName)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadUser injects the session user into the request context when a valid
// session cookie is present. It never rejects; the Require* guards do.
func (m *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.Store.Get(r, SessionName)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:           getString(sess, userIDKey),
				InvestorID:   getString(sess, investorIDKey),
				InvestorName: getString(sess, investorNameKey),
			}
			u.IsAdmin, _ = sess.Values[isAdminKey].(bool)
			r = r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionManager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireInvestor allows only users bound to an investor account.
func (m *SessionManager) RequireInvestor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if u.InvestorID == "" {
			writeAuthError(w, http.StatusForbidden, "investor access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getString(sess *sessions.Session, key string) string {
	v, _ := sess.Values[key].(string)
	return v
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
