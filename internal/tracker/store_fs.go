package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore implements content-addressed blob storage on the filesystem.
// Report bodies are stored under the blobs directory using their SHA-256
// hash as the filename. The first two characters of the hash form a
// subdirectory to avoid too many files in one directory.
type FSStore struct {
	blobsDir string
}

// NewFSStore creates a new FSStore rooted at the given blobs directory.
func NewFSStore(blobsDir string) (*FSStore, error) {
	if err := os.MkdirAll(blobsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}
	return &FSStore{blobsDir: blobsDir}, nil
}

// Put stores content and returns its content-addressed ID (SHA-256 hex).
// If the content already exists, it returns the existing ID without rewriting.
func (fs *FSStore) Put(data []byte) (string, error) {
	hash := sha256.Sum256(data)
	hashStr := hex.EncodeToString(hash[:])

	// Check if blob already exists
	blobPath := fs.blobPath(hashStr)
	if _, err := os.Stat(blobPath); err == nil {
		return hashStr, nil
	}

	// Write blob atomically using temp file + rename
	if err := atomicWriteFile(blobPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return hashStr, nil
}

// Get retrieves content by its content-addressed ID.
func (fs *FSStore) Get(blobID string) ([]byte, error) {
	blobPath := fs.blobPath(blobID)
	data, err := os.ReadFile(blobPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", blobID)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	// Verify integrity by checking hash
	hash := sha256.Sum256(data)
	hashStr := hex.EncodeToString(hash[:])
	if hashStr != blobID {
		return nil, fmt.Errorf("blob integrity check failed: expected %s, got %s", blobID, hashStr)
	}

	return data, nil
}

// Exists checks if a blob with the given ID exists.
func (fs *FSStore) Exists(blobID string) bool {
	_, err := os.Stat(fs.blobPath(blobID))
	return err == nil
}

// Delete removes a blob by its ID.
// This should only be called once no run references the blob.
func (fs *FSStore) Delete(blobID string) error {
	if err := os.Remove(fs.blobPath(blobID)); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// blobPath returns the filesystem path for a given blob ID.
// Format: blobsDir/{first2chars}/{fullhash}
func (fs *FSStore) blobPath(blobID string) string {
	// SHA-256 hex is always 64 characters; anything shorter is routed to a
	// subdirectory that can never match a real blob so operations fail safely.
	if len(blobID) < 2 {
		return filepath.Join(fs.blobsDir, "__invalid__", blobID)
	}
	return filepath.Join(fs.blobsDir, blobID[:2], blobID)
}

// atomicWriteFile writes data to a file atomically using a temp file +
// rename strategy, so the file is either fully written or not written at
// all. The temp file lives in the target's directory because rename is
// only atomic within a filesystem.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Cleanup temp file on error
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	// Fsync to ensure data is persisted to disk
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmpFile = nil // Prevent double close in defer

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Atomic rename (on POSIX systems)
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
