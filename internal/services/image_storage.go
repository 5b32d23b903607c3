package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStorage persists an uploaded picture and returns the path or URL it
// will be served from.
type ImageStorage interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func imageObjectName(header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	return uuid.NewString() + ext, nil
}

// LocalStorage writes images under <root>/posts/ and serves them from
// /media/.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	name, err := imageObjectName(header)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return "/media/posts/" + name, nil
}

// MinioStorage uploads images to an S3-compatible bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	base   string
}

func NewMinioStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return &MinioStorage{
		client: client,
		bucket: bucket,
		base:   fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket),
	}, nil
}

func (s *MinioStorage) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	name, err := imageObjectName(header)
	if err != nil {
		return "", err
	}
	object := "posts/" + name

	_, err = s.client.PutObject(context.Background(), s.bucket, object, file, header.Size,
		minio.PutObjectOptions{ContentType: header.Header.Get("Content-Type")})
	if err != nil {
		return "", fmt.Errorf("minio upload: %w", err)
	}

	return s.base + "/" + object, nil
}
