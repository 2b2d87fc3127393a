package version

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock returns a clock stepping through the given instants.
func fakeClock(instants ...time.Time) Clock {
	i := 0
	return func() time.Time {
		t := instants[i]
		if i < len(instants)-1 {
			i++
		}
		return t
	}
}

func TestSaveAndCurrent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	store, err := NewStore(t.TempDir(), fakeClock(now))
	assert.NoError(t, err)

	tag, err := store.Save([]byte("weights-v1"))
	assert.NoError(t, err)
	assert.Equal(t, Tag("model_20240301T123045Z"), tag)

	// unset before first SetCurrent
	_, ok, err := store.Current()
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.SetCurrent(tag))
	cur, ok, err := store.Current()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tag, cur)

	body, err := store.Read(tag)
	assert.NoError(t, err)
	assert.Equal(t, []byte("weights-v1"), body)
}

func TestSaveCollision(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir(), fakeClock(now, now))
	assert.NoError(t, err)

	first, err := store.Save([]byte("one"))
	assert.NoError(t, err)

	// same instant, same tag: must fail, must not clobber
	_, err = store.Save([]byte("two"))
	assert.Error(t, err)
	var collision *CollisionError
	assert.True(t, errors.As(err, &collision))
	assert.Equal(t, first, collision.Tag)

	body, err := store.Read(first)
	assert.NoError(t, err)
	assert.Equal(t, []byte("one"), body)
}

func TestArtifactImmutability(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir(), fakeClock(base, base.Add(time.Second)))
	assert.NoError(t, err)

	tag, err := store.Save([]byte("original"))
	assert.NoError(t, err)

	// a later save never touches earlier artifacts
	_, err = store.Save([]byte("newer"))
	assert.NoError(t, err)

	body, err := store.Read(tag)
	assert.NoError(t, err)
	assert.Equal(t, []byte("original"), body)
}

func TestListOrderedAndMonotonic(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 59, 58, 0, time.UTC)
	// crosses a minute and an hour boundary
	store, err := NewStore(t.TempDir(), fakeClock(
		base, base.Add(time.Second), base.Add(2*time.Second), base.Add(time.Hour)))
	assert.NoError(t, err)

	var saved []Tag
	for i := 0; i < 4; i++ {
		tag, err := store.Save([]byte{byte(i)})
		assert.NoError(t, err)
		saved = append(saved, tag)
	}
	for i := 1; i < len(saved); i++ {
		assert.True(t, saved[i-1] < saved[i], "tags must be strictly increasing")
	}

	tags, err := store.List()
	assert.NoError(t, err)
	assert.Equal(t, saved, tags)
}

func TestSetCurrentMissingArtifact(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	assert.NoError(t, err)
	assert.Error(t, store.SetCurrent(Tag("model_20200101T000000Z")))
}

func TestClean(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store, err := NewStore(t.TempDir(), fakeClock(now, now.Add(time.Second)))
	assert.NoError(t, err)

	tag, err := store.Save([]byte("one"))
	assert.NoError(t, err)
	_, err = store.Save([]byte("two"))
	assert.NoError(t, err)
	assert.NoError(t, store.SetCurrent(tag))

	assert.NoError(t, store.Clean())
	tags, err := store.List()
	assert.NoError(t, err)
	assert.Empty(t, tags)
	_, ok, err := store.Current()
	assert.NoError(t, err)
	assert.False(t, ok)
}
