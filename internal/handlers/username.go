package handlers

import (
	"net/http"
	"time"
)

const usernameCookieAge = 7 * 24 * time.Hour

// SetUsername stores the display name in a cookie, or clears it when
// the submitted value is empty.
func (h *Handlers) SetUsername(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	if username != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     "username",
			Value:    username,
			Path:     "/",
			MaxAge:   int(usernameCookieAge.Seconds()),
			HttpOnly: true,
		})
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:   "username",
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
