package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pianoscribe/api/internal/client"
	"github.com/pianoscribe/api/internal/model"
)

// contentTypes maps accepted upload extensions to their MIME types
var contentTypes = map[model.AudioFormat]string{
	model.AudioFormatWAV:  "audio/wav",
	model.AudioFormatFLAC: "audio/flac",
	model.AudioFormatOGG:  "audio/ogg",
	model.AudioFormatMP3:  "audio/mpeg",
	model.AudioFormatWebM: "audio/webm",
}

// StorageService stores uploaded recordings and finished transcription
// artifacts in object storage. Without a configured client it keeps objects
// in memory, enough for development and the e2e tests.
type StorageService struct {
	r2Client client.StorageClient

	mu     sync.RWMutex
	memory map[string][]byte
}

// NewStorageService creates a storage service backed by R2 when the client
// is non-nil
func NewStorageService(r2Client client.StorageClient) *StorageService {
	return &StorageService{
		r2Client: r2Client,
		memory:   make(map[string][]byte),
	}
}

// AudioFormatFor returns the accepted format for a filename, or an error for
// unsupported extensions
func AudioFormatFor(filename string) (model.AudioFormat, error) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	for _, f := range model.SupportedAudioFormats {
		if string(f) == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported audio format %q", ext)
}

// UploadAudio stores an uploaded recording and returns its storage key
func (s *StorageService) UploadAudio(ctx context.Context, filename string, file io.Reader) (string, error) {
	format, err := AudioFormatFor(filename)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("uploads/%s.%s", uuid.New().String(), format)

	if s.r2Client == nil {
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("failed to buffer upload: %w", err)
		}
		s.mu.Lock()
		s.memory[key] = data
		s.mu.Unlock()
		return key, nil
	}

	if _, err := s.r2Client.Upload(ctx, key, file, contentTypes[format]); err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	return key, nil
}

// FetchAudio streams a previously uploaded recording. The caller must close
// the reader.
func (s *StorageService) FetchAudio(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.r2Client == nil {
		s.mu.RLock()
		data, ok := s.memory[key]
		s.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("upload not found: %s", key)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	return s.r2Client.Download(ctx, key)
}

// StoreOutput stores a finished artifact under outputs/<jobID>/ and returns
// its public URL
func (s *StorageService) StoreOutput(ctx context.Context, jobID, name string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("outputs/%s/%s", jobID, name)

	if s.r2Client == nil {
		s.mu.Lock()
		s.memory[key] = data
		s.mu.Unlock()
		return fmt.Sprintf("https://cdn.pianoscribe.app/%s", key), nil
	}

	return s.r2Client.Upload(ctx, key, bytes.NewReader(data), contentType)
}

// DeleteUpload removes an uploaded recording once its job finished
func (s *StorageService) DeleteUpload(ctx context.Context, key string) error {
	if s.r2Client == nil {
		s.mu.Lock()
		delete(s.memory, key)
		s.mu.Unlock()
		return nil
	}

	return s.r2Client.Delete(ctx, key)
}

// GetSignedURL generates a presigned URL for temporary access to an artifact
func (s *StorageService) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.r2Client == nil {
		return fmt.Sprintf("https://cdn.pianoscribe.app/%s", key), nil
	}

	return s.r2Client.GetSignedURL(ctx, key, expiry)
}
