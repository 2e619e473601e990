package handlers

import (
	"html/template"
	"net/http"

	"clip-relay/internal/logging"
)

var viewTemplates = template.Must(template.New("views").Parse(`
{{define "home"}}<!DOCTYPE html>
<html>
<head><title>{{.Server}}</title></head>
<body>
  <h1>{{.Server}}</h1>
  <p>Paste a media URL after this server's address to relay it.</p>
  <form method="POST" action="/set-username">
    <label>Display name: <input type="text" name="username" value="{{.Username}}"></label>
    <button type="submit">Save</button>
  </form>
</body>
</html>{{end}}

{{define "success"}}<!DOCTYPE html>
<html>
<head><title>Sending...</title></head>
<body>
  <h1>On its way</h1>
  <p>Now downloading and relaying: <strong>{{.Title}}</strong></p>
</body>
</html>{{end}}

{{define "error"}}<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
  <h1>Something went wrong</h1>
  <p>{{.Message}}</p>
  {{if .Source}}<p><code>{{.Source}}</code></p>{{end}}
</body>
</html>{{end}}
`))

type homeView struct {
	Server   string
	Username string
}

type successView struct {
	Title string
}

type errorView struct {
	Message string
	Source  string
}

func render(w http.ResponseWriter, name string, status int, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := viewTemplates.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("failed to render %s view: %v", name, err)
	}
}

// renderError shows a generic failure page. Operational detail stays in
// the logs; the requester only sees the short message.
func renderError(w http.ResponseWriter, message, source string) {
	render(w, "error", http.StatusOK, errorView{Message: message, Source: source})
}
