package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/tencentyun/cos-go-sdk-v5"

	apperrors "github.com/stencil-engine/pkg/errors"
)

// COSConfig holds COS-specific configuration.
type COSConfig struct {
	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
	Domain    string // e.g. "myqcloud.com"
	Scheme    string // "https" or "http"
}

// COS implements Storage on a Tencent Cloud COS bucket.
type COS struct {
	client *cos.Client
}

// NewCOS creates a COS storage for the configured bucket.
func NewCOS(cfg *COSConfig) (*COS, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "bucket and region are required for COS storage", nil)
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "credentials are required for COS storage", nil)
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "myqcloud.com"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	bucketURL, err := url.Parse(fmt.Sprintf("%s://%s.cos.%s.%s", scheme, cfg.Bucket, cfg.Region, domain))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "parse bucket URL", err)
	}
	serviceURL, err := url.Parse(fmt.Sprintf("%s://cos.%s.%s", scheme, cfg.Region, domain))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "parse service URL", err)
	}

	client := cos.NewClient(&cos.BaseURL{
		BucketURL:  bucketURL,
		ServiceURL: serviceURL,
	}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})
	return &COS{client: client}, nil
}

// Upload stores the data from reader under key.
func (s *COS) Upload(ctx context.Context, key string, reader io.Reader) error {
	if _, err := s.client.Object.Put(ctx, key, reader, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "upload to COS", err)
	}
	return nil
}

// UploadFile stores a local file under key.
func (s *COS) UploadFile(ctx context.Context, key string, localPath string) error {
	if _, err := s.client.Object.PutFromFile(ctx, key, localPath, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeUploadError, "upload file to COS", err)
	}
	return nil
}

// Download opens the object stored under key.
func (s *COS) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDownloadError, "download from COS", err)
	}
	return resp.Body, nil
}

// DownloadFile fetches the object under key into a local file.
func (s *COS) DownloadFile(ctx context.Context, key string, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeDownloadError, "create directory", err)
	}
	if _, err := s.client.Object.GetToFile(ctx, key, localPath, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeDownloadError, "download file from COS", err)
	}
	return nil
}

// Exists reports whether an object exists under key.
func (s *COS) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.Object.IsExist(ctx, key)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeDownloadError, "check existence in COS", err)
	}
	return ok, nil
}
