package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/devsapp/model-retrain-pipeline/pkg/utils"
)

// DataUnavailableError means the dataset could not be read at
// fingerprinting time. Fatal to the run; nothing is retried here.
type DataUnavailableError struct {
	Path string
	Err  error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("dataset unavailable at %s: %v", e.Path, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Fingerprint computes a deterministic content digest of the dataset.
// Same bytes give the same digest on any machine. The dataset is only
// read, never modified. A directory dataset digests the sorted
// sequence of (relative path, file digest) pairs, so both renames and
// content edits register as a change.
func Fingerprint(datasetPath string) (string, error) {
	info, err := os.Stat(datasetPath)
	if err != nil {
		return "", &DataUnavailableError{Path: datasetPath, Err: err}
	}
	if !info.IsDir() {
		sum, err := utils.FileMD5(datasetPath)
		if err != nil {
			return "", &DataUnavailableError{Path: datasetPath, Err: err}
		}
		return sum, nil
	}

	var files []string
	err = filepath.WalkDir(datasetPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(datasetPath, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return "", &DataUnavailableError{Path: datasetPath, Err: err}
	}
	sort.Strings(files)

	hash := md5.New()
	for _, rel := range files {
		sum, err := utils.FileMD5(filepath.Join(datasetPath, rel))
		if err != nil {
			return "", &DataUnavailableError{Path: datasetPath, Err: err}
		}
		io.WriteString(hash, rel)
		io.WriteString(hash, "\x00")
		io.WriteString(hash, sum)
		io.WriteString(hash, "\n")
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
