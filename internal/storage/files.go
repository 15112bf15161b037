package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileManager owns the directory that holds generated contract PDFs. File ids
// are validated as UUIDs before they are interpolated into a path, so a
// malformed id can never escape the contracts directory.
type FileManager struct {
	baseDir      string
	contractsDir string
}

func NewFileManager(baseDir string) (*FileManager, error) {
	fm := &FileManager{
		baseDir:      baseDir,
		contractsDir: filepath.Join(baseDir, "contracts"),
	}

	dirs := []string{fm.baseDir, fm.contractsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	return fm, nil
}

func (fm *FileManager) ContractsDir() string {
	return fm.contractsDir
}

// QueuePath is where the cleanup queue snapshot lives.
func (fm *FileManager) QueuePath() string {
	return filepath.Join(fm.baseDir, "cleanup_queue.json")
}

// ValidID reports whether id is a well-formed UUID token.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// DocumentPath maps a file id to its on-disk location. Pure, no I/O.
func (fm *FileManager) DocumentPath(id string) string {
	return filepath.Join(fm.contractsDir, fmt.Sprintf("%s.pdf", id))
}

// Exists reports whether the document file is still on disk. A malformed id
// can never name a stored document, so it reports false rather than erroring.
func (fm *FileManager) Exists(id string) bool {
	if !ValidID(id) {
		return false
	}

	_, err := os.Stat(fm.DocumentPath(id))
	return err == nil
}

// Delete removes the document file. Deleting a file that is already gone is a
// successful no-op, so retrying a cleanup never fails spuriously.
func (fm *FileManager) Delete(id string) bool {
	if !ValidID(id) {
		return true
	}

	err := os.Remove(fm.DocumentPath(id))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return true
	}
	return false
}
