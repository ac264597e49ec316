package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const uploadFolder = "skinsify"

// UploadResult is the hosted copy of an uploaded file.
type UploadResult struct {
	URL          string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
}

// Host abstracts the media-hosting provider.
type Host interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// CloudinaryHost implements Host against the Cloudinary upload API using
// signed requests.
type CloudinaryHost struct {
	client    *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
}

func NewCloudinaryHost(cloudName, apiKey, apiSecret string) *CloudinaryHost {
	client := resty.New().
		SetBaseURL("https://api.cloudinary.com/v1_1/" + cloudName).
		SetTimeout(60 * time.Second)

	return &CloudinaryHost{
		client:    client,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Upload sends the file to the host and returns its stable URL. The
// resource type is auto-detected so the same path serves images and videos.
func (h *CloudinaryHost) Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error) {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	var result UploadResult
	resp, err := h.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, file).
		SetFormData(map[string]string{
			"api_key":   h.apiKey,
			"folder":    uploadFolder,
			"timestamp": timestamp,
			"signature": h.sign(map[string]string{
				"folder":    uploadFolder,
				"timestamp": timestamp,
			}),
		}).
		SetResult(&result).
		Post("/auto/upload")
	if err != nil {
		return nil, fmt.Errorf("media upload: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("media upload: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.URL == "" {
		return nil, fmt.Errorf("media upload: no URL returned")
	}

	return &result, nil
}

// Destroy removes a hosted file by its public identifier.
func (h *CloudinaryHost) Destroy(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = "image"
	}
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	resp, err := h.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_key":   h.apiKey,
			"public_id": publicID,
			"timestamp": timestamp,
			"signature": h.sign(map[string]string{
				"public_id": publicID,
				"timestamp": timestamp,
			}),
		}).
		Post("/" + resourceType + "/destroy")
	if err != nil {
		return fmt.Errorf("media destroy: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("media destroy: status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// sign produces Cloudinary's request signature: SHA-1 over the sorted
// params in query-string form with the API secret appended.
func (h *CloudinaryHost) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + h.apiSecret))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL derives the host-side public identifier from a stored
// URL: the last path segment without its extension, prefixed with the
// upload folder.
func PublicIDFromURL(url string) string {
	base := path.Base(url)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return uploadFolder + "/" + base
}
