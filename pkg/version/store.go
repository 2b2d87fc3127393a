package version

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devsapp/model-retrain-pipeline/pkg/statestore"
)

const (
	tagPrefix     = "model_"
	tagTimeLayout = "20060102T150405Z"
	artifactExt   = ".pkl"
	currentFile   = "latest"
)

// Tag identifies one saved model artifact. Tags derive from the
// training run's UTC timestamp, so lexical order is time order.
type Tag string

// Clock is the tag timestamp source, injectable for tests.
type Clock func() time.Time

// CollisionError means a save would overwrite an artifact that
// already carries the same tag. Artifacts are append-only, so the
// save fails instead of clobbering.
type CollisionError struct {
	Tag Tag
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("version collision: artifact %s already exists", e.Tag)
}

// Store keeps one artifact file per version tag under dir, plus a
// pointer file naming the current version.
type Store struct {
	dir     string
	clock   Clock
	current statestore.Store
}

func NewStore(dir string, clock Clock) (*Store, error) {
	if clock == nil {
		clock = time.Now
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	factory := &statestore.StoreFactory{}
	return &Store{
		dir:     dir,
		clock:   clock,
		current: factory.NewStore(statestore.File, filepath.Join(dir, currentFile)),
	}, nil
}

// Save writes the artifact under a fresh timestamp-derived tag.
// An existing artifact with the same tag fails with CollisionError
// and leaves no partial file behind.
func (s *Store) Save(artifact []byte) (Tag, error) {
	tag := Tag(tagPrefix + s.clock().UTC().Format(tagTimeLayout))
	path := s.Path(tag)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return "", &CollisionError{Tag: tag}
		}
		return "", err
	}
	if _, err := file.Write(artifact); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	logrus.Infof("model saved as %s", tag)
	return tag, nil
}

// SetCurrent repoints the current marker. Only call after Save
// succeeded; the tag must name an existing artifact.
func (s *Store) SetCurrent(tag Tag) error {
	if _, err := os.Stat(s.Path(tag)); err != nil {
		return fmt.Errorf("cannot set current model to %s: %v", tag, err)
	}
	return s.current.Write(string(tag))
}

// Current returns the current tag; false when no training ever succeeded.
func (s *Store) Current() (Tag, bool, error) {
	val, ok, err := s.current.Read()
	if err != nil || !ok {
		return "", false, err
	}
	return Tag(val), true, nil
}

// Read returns the artifact bytes saved under tag.
func (s *Store) Read(tag Tag) ([]byte, error) {
	return os.ReadFile(s.Path(tag))
}

// Path is the artifact location on disk, handed to the image build.
func (s *Store) Path(tag Tag) string {
	return filepath.Join(s.dir, string(tag)+artifactExt)
}

// List returns all saved tags, oldest first.
func (s *Store) List() ([]Tag, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, tagPrefix) && strings.HasSuffix(name, artifactExt) {
			tags = append(tags, Tag(strings.TrimSuffix(name, artifactExt)))
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags, nil
}

// Clean removes every artifact and the current pointer. Destructive;
// only the clean command calls this.
func (s *Store) Clean() error {
	tags, err := s.List()
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := os.Remove(s.Path(tag)); err != nil {
			return err
		}
	}
	return s.current.Delete()
}
