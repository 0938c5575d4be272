package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("supabase url is empty")
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is empty")
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores data at path (overwriting) and returns its public URL.
func (s *StorageClient) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", path, err)
	}

	return s.GetPublicURL(path), nil
}

func (s *StorageClient) GetPublicURL(path string) string {
	return fmt.Sprintf("%s%s%s", s.baseURL, s.publicMarker(), path)
}

// Remove deletes all paths in a single request.
func (s *StorageClient) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to delete %d files: %w", len(paths), err)
	}
	return nil
}

// PathFromURL extracts the object path from a public URL of this bucket.
func (s *StorageClient) PathFromURL(publicURL string) (string, bool) {
	return PathFromPublicURL(publicURL, s.bucket)
}

func (s *StorageClient) publicMarker() string {
	return "/storage/v1/object/public/" + s.bucket + "/"
}

// PathFromPublicURL returns the object path that follows
// "/object/public/{bucket}/" in publicURL. Query strings are dropped.
func PathFromPublicURL(publicURL, bucket string) (string, bool) {
	marker := "/object/public/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx == -1 {
		return "", false
	}
	path := publicURL[idx+len(marker):]
	if q := strings.IndexAny(path, "?#"); q != -1 {
		path = path[:q]
	}
	if path == "" {
		return "", false
	}
	return path, true
}
