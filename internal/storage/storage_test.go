package storage

import (
	"testing"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filePath string
		wantType string
	}{
		{"guide_en.itt", "application/ttml+xml"},
		{"episode.ttml", "application/ttml+xml"},
		{"legacy.dfxp", "application/ttml+xml"},
		{"corrected_fr.xml", "text/xml"},
		{"fallback.srt", "application/x-subrip"},
		{"web.vtt", "text/vtt"},
		{"unknown.xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filePath, func(t *testing.T) {
			contentType := ContentTypeFor(tt.filePath)
			if contentType != tt.wantType {
				t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.filePath, contentType, tt.wantType)
			}
		})
	}
}
