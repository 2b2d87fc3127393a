package statestore

type StoreType string

const (
	File StoreType = "file"
)

// Store is a single-value store used for pipeline state
// (dataset checksum, current model pointer).
type Store interface {
	// Read retrieves the stored value.
	// The second return is false when nothing has been stored yet;
	// a missing store is not an error.
	Read() (string, bool, error)

	// Write replaces the stored value. The write is atomic: readers
	// never observe a partially written value, even across crashes.
	Write(value string) error

	// CompareAndSwap writes new only if the stored value equals old.
	// An absent store matches old == "". Returns whether the swap
	// happened. There is no cross-process lock behind this; it is the
	// seam where one would bolt on.
	CompareAndSwap(old, new string) (bool, error)

	// Delete removes the stored value. Deleting an absent store is
	// not an error.
	Delete() error
}

type StoreFactory struct{}

func (f *StoreFactory) NewStore(storeType StoreType, location string) Store {
	switch storeType {
	case File:
		return NewFileStore(location)
	default:
		panic("not support store type=" + string(storeType))
	}
}
