package mediatypes

import (
	"testing"
)

func TestGetKind(t *testing.T) {
	tests := []struct {
		ext      string
		expected Kind
	}{
		{".jpg", KindImage},
		{".jpeg", KindImage},
		{".png", KindImage},
		{".bmp", KindImage},
		{".gif", KindImage},
		{".tiff", KindImage},
		{".webp", KindImage},
		{".mp4", KindVideo},
		{".avi", KindVideo},
		{".mov", KindVideo},
		{".mkv", KindVideo},
		{".flv", KindVideo},
		{".wmv", KindVideo},
		{".webm", KindVideo},
		{".3gp", KindVideo},
		{".txt", KindOther},
		{".pdf", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetKind(tt.ext); got != tt.expected {
				t.Errorf("GetKind(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		path     string
		expected Kind
	}{
		{"photo.PNG", KindImage},
		{"/some/dir/clip.Mp4", KindVideo},
		{"archive.tar.gz", KindOther},
		{"noextension", KindOther},
		{"movie.webm", KindVideo},
		{"scan.TIFF", KindImage},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectKind(tt.path); got != tt.expected {
				t.Errorf("DetectKind(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("a.jpg") {
		t.Error("IsSupported(a.jpg) = false")
	}
	if !IsSupported("b.mkv") {
		t.Error("IsSupported(b.mkv) = false")
	}
	if IsSupported("c.doc") {
		t.Error("IsSupported(c.doc) = true")
	}
}
