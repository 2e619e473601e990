package handlers

import "testing"

func TestParseRelayPath(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantURL     string
		wantMessage string
		wantChannel string
	}{
		{
			name:        "URL with message and channel",
			raw:         "https://youtube.com/watch?v=X/?message=hi&channel=general",
			wantURL:     "https://youtube.com/watch?v=X",
			wantMessage: "hi",
			wantChannel: "general",
		},
		{
			name:    "URL without marker",
			raw:     "https://youtube.com/watch?v=X",
			wantURL: "https://youtube.com/watch?v=X",
		},
		{
			name:        "Last marker wins",
			raw:         "https://youtu.be/a/?b=c/?message=hello",
			wantURL:     "https://youtu.be/a/?b=c",
			wantMessage: "hello",
		},
		{
			name:        "Encoded message text",
			raw:         "https://youtu.be/a/?message=hello%20how%20are%20you",
			wantURL:     "https://youtu.be/a",
			wantMessage: "hello how are you",
		},
		{
			name:        "Channel only",
			raw:         "https://youtu.be/a/?channel=memes",
			wantURL:     "https://youtu.be/a",
			wantChannel: "memes",
		},
		{
			name:    "Empty remainder",
			raw:     "",
			wantURL: "",
		},
		{
			name:    "Marker with empty params",
			raw:     "https://youtu.be/a/?",
			wantURL: "https://youtu.be/a",
		},
		{
			name:    "URL part kept verbatim",
			raw:     "https://www.reddit.com/r/videos/comments/abc/some_title/",
			wantURL: "https://www.reddit.com/r/videos/comments/abc/some_title/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotMessage, gotChannel := ParseRelayPath(tt.raw)
			if gotURL != tt.wantURL {
				t.Errorf("Expected url %q, got %q", tt.wantURL, gotURL)
			}
			if gotMessage != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, gotMessage)
			}
			if gotChannel != tt.wantChannel {
				t.Errorf("Expected channel %q, got %q", tt.wantChannel, gotChannel)
			}
		})
	}
}
