package store

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLink(t *testing.T) {
	s := NewS3ObjectStore(nil, "my-videos", "eu-north-1")

	tests := []struct {
		name    string
		link    string
		wantKey string
		wantOK  bool
	}{
		{"s3 uri", "s3://my-videos/clips/a.mp4", "clips/a.mp4", true},
		{"https regional", "https://my-videos.s3.eu-north-1.amazonaws.com/clips/a.mp4", "clips/a.mp4", true},
		{"https global", "https://my-videos.s3.amazonaws.com/a.mp4", "a.mp4", true},
		{"surrounding whitespace", "  s3://my-videos/a.mp4  ", "a.mp4", true},
		{"nested key", "s3://my-videos/u/42/trip part1.mp4", "u/42/trip part1.mp4", true},
		{"wrong bucket s3", "s3://other-bucket/a.mp4", "", false},
		{"wrong bucket https", "https://other.s3.amazonaws.com/a.mp4", "", false},
		{"missing key", "s3://my-videos/", "", false},
		{"plain http", "http://my-videos.s3.amazonaws.com/a.mp4", "", false},
		{"not a link", "hello there", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := s.ValidateLink(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestObjectURL(t *testing.T) {
	s := NewS3ObjectStore(nil, "my-videos", "eu-north-1")

	url := s.ObjectURL("merged/out.mp4")
	assert.Equal(t, "https://my-videos.s3.eu-north-1.amazonaws.com/merged/out.mp4", url)

	// Rendered URLs validate back to the same key.
	key, ok := s.ValidateLink(url)
	require.True(t, ok)
	assert.Equal(t, "merged/out.mp4", key)
}

func TestObjectURLEscapesKey(t *testing.T) {
	s := NewS3ObjectStore(nil, "my-videos", "eu-north-1")

	assert.Equal(t,
		"https://my-videos.s3.eu-north-1.amazonaws.com/merged/trip%20part%231.mp4",
		s.ObjectURL("merged/trip part#1.mp4"))
	assert.Equal(t,
		"https://my-videos.s3.eu-north-1.amazonaws.com/merged/%D0%B2%D0%B8%D0%B4%D0%B5%D0%BE.mp4",
		s.ObjectURL("merged/видео.mp4"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "video/mp4", contentTypeFor("merged/out.mp4"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("merged/out"))
}

func TestProgressReaderReportsBytes(t *testing.T) {
	src := strings.NewReader(strings.Repeat("x", 100))

	var samples [][2]int64
	r := newProgressReader(io.NopCloser(src), 100, func(transferred, total int64) {
		samples = append(samples, [2]int64{transferred, total})
	})

	n, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)

	require.NotEmpty(t, samples)
	last := samples[len(samples)-1]
	assert.Equal(t, int64(100), last[0])
	assert.Equal(t, int64(100), last[1])
}
