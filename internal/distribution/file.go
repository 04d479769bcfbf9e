package distribution

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	fileMode        = 0o644
	tempFilePattern = ".distribution-*.tmp"
)

// #region write-file
// WriteFile stores the distribution at path, replacing any existing file.
// The data is written to a temporary file in the same directory first so
// a failed write never leaves a truncated file behind.
func (d *Distribution) WriteFile(path string) error {
	data := d.Encode()

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	cleanup = false
	return nil
}

// #endregion write-file

// #region read-file
// ReadFile loads a distribution previously stored with WriteFile.
func ReadFile(path string) (*Distribution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read distribution %s: %w", path, err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse distribution %s: %w", path, err)
	}
	return d, nil
}

// #endregion read-file
