package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1/skinsify/abc123.png": "skinsify/abc123",
		"https://res.cloudinary.com/demo/video/upload/v1/skinsify/clip.mp4":   "skinsify/clip",
		"https://res.cloudinary.com/demo/image/upload/skinsify/noext":         "skinsify/noext",
		"https://res.cloudinary.com/demo/a.b/two.dots.jpeg":                   "skinsify/two.dots",
	}
	for url, want := range cases {
		assert.Equal(t, want, PublicIDFromURL(url), "url %s", url)
	}
}

func TestSign_DeterministicAndOrderIndependent(t *testing.T) {
	host := NewCloudinaryHost("demo", "key", "secret")

	a := host.sign(map[string]string{"folder": "skinsify", "timestamp": "1700000000"})
	b := host.sign(map[string]string{"timestamp": "1700000000", "folder": "skinsify"})

	assert.Equal(t, a, b)
	assert.Len(t, a, 40) // hex SHA-1

	// Any param change produces a different signature
	c := host.sign(map[string]string{"folder": "skinsify", "timestamp": "1700000001"})
	assert.NotEqual(t, a, c)
}
