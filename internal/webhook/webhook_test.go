package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestComposeMessage(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		message     string
		expected    string
	}{
		{
			name:        "Both present",
			displayName: "alice",
			message:     "check this out",
			expected:    "alice shared:\ncheck this out",
		},
		{
			name:        "Display name only",
			displayName: "alice",
			message:     "",
			expected:    "alice shared:",
		},
		{
			name:        "Message only",
			displayName: "",
			message:     "check this out",
			expected:    "\ncheck this out",
		},
		{
			name:        "Neither is a valid file-only post",
			displayName: "",
			message:     "",
			expected:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeMessage(tt.displayName, tt.message); got != tt.expected {
				t.Errorf("ComposeMessage(%q, %q) = %q, expected %q",
					tt.displayName, tt.message, got, tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	d := New(map[string]string{"general": "https://hooks.example/general"})

	endpoint, err := d.Resolve("general")
	if err != nil {
		t.Fatalf("Resolve unexpected error: %v", err)
	}
	if endpoint != "https://hooks.example/general" {
		t.Errorf("Expected general endpoint, got %s", endpoint)
	}

	if _, err := d.Resolve("memes"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("Expected ErrChannelNotFound for unknown channel, got %v", err)
	}
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "req-1.mp4")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return path
}

func TestDeliverSendsMultipart(t *testing.T) {
	var gotContent string
	var gotFile []byte
	var gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotContent = r.FormValue("content")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotFile, _ = io.ReadAll(file)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	artifact := writeArtifact(t, "video-bytes")
	d := New(map[string]string{"general": srv.URL})

	if err := d.Deliver(context.Background(), "general", artifact, "hi", "alice"); err != nil {
		t.Fatalf("Deliver unexpected error: %v", err)
	}

	if gotContent != "alice shared:\nhi" {
		t.Errorf("Expected content %q, got %q", "alice shared:\nhi", gotContent)
	}
	if string(gotFile) != "video-bytes" {
		t.Errorf("Expected file bytes %q, got %q", "video-bytes", string(gotFile))
	}
	if gotFilename != "req-1.mp4" {
		t.Errorf("Expected filename req-1.mp4, got %s", gotFilename)
	}
}

func TestDeliverUnknownChannelIsTerminal(t *testing.T) {
	artifact := writeArtifact(t, "video-bytes")
	d := New(map[string]string{"general": "https://hooks.example/general"})

	err := d.Deliver(context.Background(), "nope", artifact, "hi", "")
	if !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("Expected ErrChannelNotFound, got %v", err)
	}
}

func TestDeliverEndpointFaultIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	artifact := writeArtifact(t, "video-bytes")
	d := New(map[string]string{"general": srv.URL})

	// The artifact was produced; a failing endpoint must not fail the pipeline.
	if err := d.Deliver(context.Background(), "general", artifact, "", ""); err != nil {
		t.Errorf("Expected endpoint fault to be swallowed, got %v", err)
	}
}

func TestDeliverUnreachableEndpointIsSwallowed(t *testing.T) {
	artifact := writeArtifact(t, "video-bytes")
	d := New(map[string]string{"general": "http://127.0.0.1:1/nothing-listens-here"})

	if err := d.Deliver(context.Background(), "general", artifact, "", ""); err != nil {
		t.Errorf("Expected network fault to be swallowed, got %v", err)
	}
}
