package loom

import (
	"errors"
	"fmt"
)

// BlobStore is the key-value persistence hook supplied by the shell
// (preferences file, project database, anything that stores named
// blobs). Loom only reads and writes whole blobs through it.
type BlobStore interface {
	// Get returns the blob for a key; ok is false when the key is absent.
	Get(key string) ([]byte, bool)
	// Set stores the blob for a key, replacing any existing value.
	Set(key string, data []byte) error
}

// Blob keys used by Document.Save and Document.Load.
const (
	OverridesBlobKey = "loom.overrides"
	SlicesBlobKey    = "loom.slices"
)

// Save serializes the override and slice stores into the blob store.
// Both stores are attempted even if one fails; errors are joined.
func (d *Document) Save(store BlobStore) error {
	var errs []error

	if data, err := d.Overrides.ToJSON(); err != nil {
		errs = append(errs, err)
	} else if err := store.Set(OverridesBlobKey, data); err != nil {
		errs = append(errs, fmt.Errorf("loom: failed to save overrides: %w", err))
	}

	if data, err := d.Slices.ToJSON(); err != nil {
		errs = append(errs, err)
	} else if err := store.Set(SlicesBlobKey, data); err != nil {
		errs = append(errs, fmt.Errorf("loom: failed to save slices: %w", err))
	}

	return errors.Join(errs...)
}

// Load restores the override and slice stores from the blob store.
// Missing blobs are not errors (a fresh document). One store failing to
// load — including an override schema version mismatch, reported as
// ErrVersionMismatch — does not block loading the other.
func (d *Document) Load(store BlobStore) error {
	var errs []error

	if data, ok := store.Get(OverridesBlobKey); ok {
		if err := d.Overrides.FromJSON(data); err != nil {
			errs = append(errs, err)
		}
	}
	if data, ok := store.Get(SlicesBlobKey); ok {
		if err := d.Slices.FromJSON(data); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
