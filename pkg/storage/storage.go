// Package storage keeps schema documents as named snapshots in a pebble database so a
// registry can be rebuilt from an exact, previously validated set of definitions.
package storage

import (
	"bytes"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/types"
)

var (
	// ErrSnapshotNotFound is returned for an id with no stored snapshot
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrInvalidSnapshot is returned when a document does not load as a schema
	ErrInvalidSnapshot = errors.New("invalid schema snapshot")
)

var (
	snapPrefix = []byte("snap/")
	metaPrefix = []byte("meta/")
)

// headerSchema describes the value stored under meta/<id>
const headerSchema = `{"SnapshotHeader": {"label": "Text", "size": "Compact<u64>", "types": "Compact<u32>"}}`

// SnapshotInfo describes one stored snapshot
type SnapshotInfo struct {
	ID      ksuid.KSUID `json:"id"`
	Label   string      `json:"label"`
	Size    uint64      `json:"size"`
	Types   uint32      `json:"types"`
	Created time.Time   `json:"created"`
}

// SnapshotStore persists schema documents keyed by ksuid
type SnapshotStore struct {
	db     *pebble.DB
	header *types.TypeRef
	log    *zap.Logger
	newID  func() ksuid.KSUID
}

// NewSnapshotStore opens (or creates) the snapshot database at path
func NewSnapshotStore(path string, log *zap.Logger) (*SnapshotStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	header, err := snapshotHeaderType()
	if err != nil {
		return nil, err
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot store %s", path)
	}
	return &SnapshotStore{db: db, header: header, log: log, newID: ksuid.New}, nil
}

func snapshotHeaderType() (*types.TypeRef, error) {
	lookup := types.NewLookup()
	if err := lookup.InsertPrimitives(); err != nil {
		return nil, err
	}
	if err := lookup.LoadSchemaBytes([]byte(headerSchema)); err != nil {
		return nil, errors.Wrap(err, "snapshot header schema")
	}
	ref, ok := lookup.Get("SnapshotHeader")
	if !ok {
		return nil, errors.New("snapshot header schema did not define SnapshotHeader")
	}
	return ref, nil
}

func key(prefix []byte, id ksuid.KSUID) []byte {
	return append(slices.Clone(prefix), id.String()...)
}

// Validate loads doc into a scratch registry and returns the number of type names it
// adds, referenced but undefined names included
func Validate(doc []byte) (uint32, error) {
	lookup := types.NewLookup()
	if err := lookup.InsertPrimitives(); err != nil {
		return 0, err
	}
	base := lookup.Len()
	if err := lookup.LoadSchemaBytes(doc); err != nil {
		return 0, errors.WithSecondaryError(errors.Wrapf(ErrInvalidSnapshot, "%v", err), err)
	}
	return uint32(lookup.Len() - base), nil
}

// Save validates doc and stores it under a new id
func (s *SnapshotStore) Save(label string, doc []byte) (ksuid.KSUID, error) {
	count, err := Validate(doc)
	if err != nil {
		return ksuid.Nil, err
	}

	id := s.newID()
	header, err := s.header.Encode(map[string]any{
		"label": label,
		"size":  uint64(len(doc)),
		"types": count,
	})
	if err != nil {
		return ksuid.Nil, errors.Wrap(err, "encode snapshot header")
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key(snapPrefix, id), doc, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Set(key(metaPrefix, id), header, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrap(err, "commit snapshot")
	}

	s.log.Info("saved schema snapshot",
		zap.String("id", id.String()),
		zap.String("label", label),
		zap.Uint32("types", count))
	return id, nil
}

func (s *SnapshotStore) get(k []byte) ([]byte, error) {
	data, closer, err := s.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(data), nil
}

// Info returns the header of one snapshot
func (s *SnapshotStore) Info(id ksuid.KSUID) (SnapshotInfo, error) {
	data, err := s.get(key(metaPrefix, id))
	if err != nil {
		return SnapshotInfo{}, errors.Wrapf(err, "snapshot %s", id)
	}
	return s.decodeInfo(id, data)
}

func (s *SnapshotStore) decodeInfo(id ksuid.KSUID, data []byte) (SnapshotInfo, error) {
	v, err := s.header.DecodeAll(data)
	if err != nil {
		return SnapshotInfo{}, errors.Wrapf(err, "decode snapshot header %s", id)
	}
	rec := v.(map[string]any)
	return SnapshotInfo{
		ID:      id,
		Label:   rec["label"].(string),
		Size:    uint64(rec["size"].(int64)),
		Types:   uint32(rec["types"].(int64)),
		Created: id.Time(),
	}, nil
}

// Load returns the stored document and its header
func (s *SnapshotStore) Load(id ksuid.KSUID) ([]byte, SnapshotInfo, error) {
	info, err := s.Info(id)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	doc, err := s.get(key(snapPrefix, id))
	if err != nil {
		return nil, SnapshotInfo{}, errors.Wrapf(err, "snapshot %s", id)
	}
	return doc, info, nil
}

// List returns every snapshot, newest first
func (s *SnapshotStore) List() ([]SnapshotInfo, error) {
	upper := slices.Clone(metaPrefix)
	upper[len(upper)-1]++
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: metaPrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []SnapshotInfo
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.Parse(string(iter.Key()[len(metaPrefix):]))
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot key %q", iter.Key())
		}
		info, err := s.decodeInfo(id, iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// Delete removes a snapshot
func (s *SnapshotStore) Delete(id ksuid.KSUID) error {
	if _, err := s.get(key(metaPrefix, id)); err != nil {
		return errors.Wrapf(err, "snapshot %s", id)
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(key(snapPrefix, id), nil); err != nil {
		return err
	}
	if err := batch.Delete(key(metaPrefix, id), nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "commit snapshot delete")
	}
	s.log.Info("deleted schema snapshot", zap.String("id", id.String()))
	return nil
}

// Close closes the underlying database
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
