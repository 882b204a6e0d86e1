package utils

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StagePrefix marks files created by StageUpload so the sweeper only ever
// removes its own files.
const StagePrefix = "upload-"

// EnsureUploadDir creates the staging directory if it doesn't exist
func EnsureUploadDir(dir string) error {
	return os.MkdirAll(dir, os.ModePerm)
}

// StageUpload copies an uploaded file into dir and returns its path together
// with a cleanup function that removes it. Callers defer the cleanup.
func StageUpload(fileHeader *multipart.FileHeader, dir string) (string, func(), error) {
	if err := EnsureUploadDir(dir); err != nil {
		return "", func() {}, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	destPath := filepath.Join(dir, StagePrefix+uuid.NewString()+ext)
	cleanup := func() {
		if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[UPLOADS] failed to remove %s: %v", destPath, err)
		}
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return "", func() {}, err
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return destPath, cleanup, nil
}

// SweepStaged removes staged uploads in dir older than maxAge and returns
// how many were removed. A missing directory is not an error.
func SweepStaged(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), StagePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			log.Printf("[UPLOADS] failed to sweep %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
