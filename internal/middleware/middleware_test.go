package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Clean string", "normal-path", "normal-path"},
		{"Newline replaced", "line1\nline2", "line1 line2"},
		{"Carriage return replaced", "line1\rline2", "line1 line2"},
		{"CRLF replaced", "line1\r\nline2", "line1  line2"},
		{"Null byte removed", "before\x00after", "beforeafter"},
		{"ANSI escape removed", "text\x1b[31mred", "text[31mred"},
		{"Tab preserved", "col1\tcol2", "col1\tcol2"},
		{"Other control chars removed", "a\x01\x02b", "ab"},
		{"Empty string", "", ""},
		{"Unicode preserved", "café/видео", "café/видео"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/", "/"},
		{"/set-username", "/set-username"},
		{"/version", "/version"},
		{"/api/history", "/api/history"},
		{"/healthz", "/healthz"},
		{"/livez", "/livez"},
		{"/https://youtube.com/watch", "/{url}"},
		{"/youtu.be/abc123", "/{url}"},
		{"/anything/else", "/{url}"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "RemoteAddr only",
			remoteAddr: "192.168.1.10:54321",
			expected:   "192.168.1.10",
		},
		{
			name:       "X-Forwarded-For single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			expected:   "203.0.113.5",
		},
		{
			name:       "X-Forwarded-For chain takes first",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2, 10.0.0.3"},
			expected:   "203.0.113.5",
		},
		{
			name:       "X-Real-IP fallback",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			expected:   "198.51.100.7",
		},
		{
			name:       "X-Forwarded-For beats X-Real-IP",
			remoteAddr: "10.0.0.1:80",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.5",
				"X-Real-IP":       "198.51.100.7",
			},
			expected: "203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestShouldSkip(t *testing.T) {
	config := DefaultLoggingConfig()

	tests := []struct {
		name     string
		path     string
		config   LoggingConfig
		expected bool
	}{
		{"Relay path logged", "/https://youtu.be/abc", config, false},
		{"Static CSS skipped", "/styles.css", config, true},
		{"Health logged by default", "/healthz", config, false},
		{
			name:     "Health skipped when disabled",
			path:     "/healthz",
			config:   LoggingConfig{LogHealthChecks: false},
			expected: true,
		},
		{
			name:     "Skip path prefix",
			path:     "/metrics",
			config:   LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: true},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSkip(tt.path, tt.config); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.path, got)
			}
		})
	}
}
