package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/pkg/storage"
)

const rawResource = "raw"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service implements storage.Storage using Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &Service{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary. The shared link is the secure delivery URL
// and the direct link forces a download of the same asset.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (storage.Object, error) {
	result, err := s.client.Upload.Upload(ctx, reader, s.uploadParams(name))
	if err != nil {
		return storage.Object{}, fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return storage.Object{}, fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return storage.Object{}, errors.New("cloudinary returned no delivery url")
	}

	s.logger.Info().Str("public_id", result.PublicID).Int("bytes", result.Bytes).Msg("file uploaded to cloudinary")

	return storage.Object{
		Key:          result.PublicID,
		ResourceType: result.ResourceType,
		SharedLink:   result.SecureURL,
		DirectLink:   attachmentURL(result.SecureURL),
		Bytes:        int64(result.Bytes),
	}, nil
}

// Delete destroys a previously uploaded asset.
func (s *Service) Delete(ctx context.Context, object storage.Object) error {
	resourceType := object.ResourceType
	if resourceType == "" {
		resourceType = rawResource
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     object.Key,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to delete asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", object.Key).Str("result", result.Result).Msg("file removed from cloudinary")
	return nil
}

// uploadParams stores submissions as raw assets. Raw public ids keep the file extension.
func (s *Service) uploadParams(name string) uploader.UploadParams {
	return uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     buildPublicID(name) + strings.ToLower(filepath.Ext(name)),
		ResourceType: rawResource,
	}
}

// attachmentURL adds the fl_attachment flag so browsers download instead of preview.
func attachmentURL(secureURL string) string {
	const marker = "/upload/"
	idx := strings.Index(secureURL, marker)
	if idx < 0 {
		return secureURL
	}
	cut := idx + len(marker)
	return secureURL[:cut] + "fl_attachment/" + secureURL[cut:]
}

// buildPublicID keeps the ASCII part of the name readable and appends a random suffix.
// Non-ASCII names (the common case for submissions) collapse to the "submission" prefix.
func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "submission"
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString())
}
