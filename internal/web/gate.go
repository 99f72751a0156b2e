package web

import (
	"net/http"
	"time"
)

const (
	loginCookie   = "login"
	sessionCookie = "jot_session"
)

// Gate is the pseudo-login switch: a login=true cookie with an expiry.
// It only hides the notes page; it does not authenticate anyone.
type Gate struct {
	TTL time.Duration
	Now func() time.Time
}

func (g Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// LoggedIn reports whether the request carries the login flag.
func (g Gate) LoggedIn(r *http.Request) bool {
	c, err := r.Cookie(loginCookie)
	return err == nil && c.Value == "true"
}

// Login sets the flag until TTL elapses.
func (g Gate) Login(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     loginCookie,
		Value:    "true",
		Path:     "/",
		Expires:  g.now().Add(g.TTL),
		MaxAge:   int(g.TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Logout expires the flag.
func (g Gate) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     loginCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
