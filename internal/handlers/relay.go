package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"clip-relay/internal/logging"
	"clip-relay/internal/middleware"
	"clip-relay/internal/pipeline"
)

// ParseRelayPath interprets an inbound request path (leading separator
// already stripped) as "<source_url>[/?message=<text>&channel=<name>]".
// The LAST occurrence of the "/?" marker splits the embedded URL from
// the trailing parameters; everything before it, verbatim, is the
// source URL. With no marker the whole remainder is the URL.
func ParseRelayPath(raw string) (sourceURL, message, channel string) {
	idx := strings.LastIndex(raw, "/?")
	if idx == -1 {
		return raw, "", ""
	}

	sourceURL = raw[:idx]
	params, err := url.ParseQuery(raw[idx+2:])
	if err != nil {
		// Malformed trailing params are dropped, the URL part stands
		return sourceURL, "", ""
	}
	return sourceURL, params.Get("message"), params.Get("channel")
}

// Relay is the catch-all entry point: the request path embeds the media
// URL. It runs the entry gates synchronously, answers the requester,
// then finishes the pipeline in the same goroutine with a context
// detached from the request, since the client may leave as soon as the
// page renders.
func (h *Handlers) Relay(w http.ResponseWriter, r *http.Request) {
	// RequestURI keeps the embedded URL's own query intact; URL.Path
	// would have split it at the first "?".
	raw := strings.TrimPrefix(r.RequestURI, "/")

	sourceURL, message, channel := ParseRelayPath(raw)
	if sourceURL == "" {
		h.Home(w, r)
		return
	}
	if sourceURL == "favicon.ico" {
		http.NotFound(w, r)
		return
	}

	if channel == "" {
		channel = h.cfg.DefaultChannel
	}

	displayName := ""
	if c, err := r.Cookie("username"); err == nil {
		displayName = c.Value
	}

	req := pipeline.NewRequest(sourceURL, message, displayName, channel, middleware.ClientIP(r))

	title, err := h.pipe.Admit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNotApproved):
			renderError(w, "URL below is not an approved URL.", sourceURL)
		case errors.Is(err, pipeline.ErrDurationExceeded):
			renderError(w, fmt.Sprintf("Video is longer than %d seconds.", h.cfg.MaxVideoSeconds), "")
		default:
			renderError(w, "Could not process that video.", "")
		}
		return
	}

	render(w, "success", http.StatusOK, successView{Title: title})
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	if err := h.pipe.Complete(context.Background(), req); err != nil {
		logging.Error("pipeline failed for request %s: %v", req.ID, err)
	}
}

// Home renders the landing page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	username := ""
	if c, err := r.Cookie("username"); err == nil {
		username = c.Value
	}
	render(w, "home", http.StatusOK, homeView{
		Server:   h.cfg.ServerName,
		Username: username,
	})
}
