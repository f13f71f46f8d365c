// Package jdb is the on-disk jail database: an `index` file listing every container this
// host knows about, plus one `<uuid>.json` ContainerConfig per entry. It is the Go
// counterpart of the teacher's boxer.go persistence layer, except JDB's store is plain
// JSON files (per spec, not sqlite) with a temp-file-then-rename write path for crash
// consistency instead of boxer's sqlc-backed sqlite.
package jdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// State is the persisted lifecycle state of a container, independent of whatever a live
// OS query reports.
type State string

const (
	StateStopped   State = "stopped"
	StateRunningish State = "running-ish"
)

// IndexEntry is the authoritative "this container exists on this host" record.
type IndexEntry struct {
	Version     int       `json:"version"`
	UUID        string    `json:"uuid"`
	RootDataset string    `json:"root_dataset"`
	State       State     `json:"state"`
	JailType    string    `json:"jail_type"`
	StartedAt   time.Time `json:"started_at,omitempty"`
}

const indexVersion = 1

type indexFile struct {
	Version int          `json:"version"`
	Entries []IndexEntry `json:"entries"`
}

// OSLiveEntry is a transient (jid, name) pair parsed from the host's jail listing. It is
// never persisted.
type OSLiveEntry struct {
	JID  int
	Name string
}

// Container is the read-only composition of everything known about a single container:
// its index record, its desired configuration, and up to two live OS entries — outer is
// the top-level jail, inner is its nested `<uuid>.<uuid>` child, if any.
type Container struct {
	Index  IndexEntry
	Config jailconfig.ContainerConfig
	Inner  *OSLiveEntry
	Outer  *OSLiveEntry
}

// Running reports whether the outer jail is up.
func (c Container) Running() bool { return c.Outer != nil }

// JDB is a single process's view of the jail database. Exactly one instance is expected
// per process invocation; there is no cross-process locking, matching spec §4.6's "not
// supported" stance on concurrent vmadm invocations.
type JDB struct {
	confDir string
	exec    hostexec.HostExec
	index   indexFile
}

// Open loads (or, if absent, creates) the index file under confDir and returns a JDB
// backed by it. The live OS map is reconstructed on every Get/Iter call rather than cached
// here, since jail state can change between calls within the same process.
func Open(ctx context.Context, confDir string, exec hostexec.HostExec) (*JDB, error) {
	db := &JDB{confDir: confDir, exec: exec}
	path := db.indexPath()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		db.index = indexFile{Version: indexVersion, Entries: []IndexEntry{}}
		if err := db.persistIndex(); err != nil {
			return nil, err
		}
		return db, nil
	}
	if err != nil {
		return nil, vmerrors.Generic("opening index %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&db.index); err != nil {
		return nil, vmerrors.Generic("decoding index %s: %w", path, err)
	}
	return db, nil
}

func (db *JDB) indexPath() string { return filepath.Join(db.confDir, "index") }

func (db *JDB) configPath(uuid string) string { return filepath.Join(db.confDir, uuid+".json") }

func (db *JDB) persistIndex() error {
	return writeAtomic(db.indexPath(), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(db.index)
	})
}

func (db *JDB) persistConfig(cfg *jailconfig.ContainerConfig) error {
	return writeAtomic(db.configPath(cfg.UUID), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	})
}

// writeAtomic writes via a temp file in the same directory, then renames it into place, so
// a crash mid-write never leaves a half-written file observable under the real name.
func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return vmerrors.Generic("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return vmerrors.Generic("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return vmerrors.Generic("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return vmerrors.Generic("renaming %s into place: %w", path, err)
	}
	return nil
}

func (db *JDB) indexOf(uuid string) int {
	for i, e := range db.index.Entries {
		if e.UUID == uuid {
			return i
		}
	}
	return -1
}

// Insert writes the per-UUID config file, then commits the index with the new entry
// appended last, so an interrupted insert — one that wrote the config file but never
// reached the index rewrite — leaves no dangling index entry on the next Open.
func (db *JDB) Insert(ctx context.Context, cfg jailconfig.ContainerConfig, rootDataset string) (IndexEntry, error) {
	if db.indexOf(cfg.UUID) != -1 {
		return IndexEntry{}, &vmerrors.Conflict{UUID: cfg.UUID}
	}
	now := time.Now().UTC()
	cfg.CreateTimestamp = now
	cfg.LastModified = now

	if err := db.persistConfig(&cfg); err != nil {
		return IndexEntry{}, err
	}

	entry := IndexEntry{
		Version:     indexVersion,
		UUID:        cfg.UUID,
		RootDataset: rootDataset,
		State:       StateStopped,
		JailType:    cfg.Brand,
	}
	db.index.Entries = append(db.index.Entries, entry)
	if err := db.persistIndex(); err != nil {
		db.index.Entries = db.index.Entries[:len(db.index.Entries)-1]
		return IndexEntry{}, err
	}
	return entry, nil
}

// Update overwrites `<uuid>.json`. Fails with NotFound if no index entry exists.
func (db *JDB) Update(ctx context.Context, cfg jailconfig.ContainerConfig) error {
	if db.indexOf(cfg.UUID) == -1 {
		return &vmerrors.NotFound{UUID: cfg.UUID}
	}
	cfg.LastModified = time.Now().UTC()
	return db.persistConfig(&cfg)
}

// UpdateState rewrites only the persisted state field for uuid and commits the index.
// Transitioning into StateRunningish stamps StartedAt; any other transition clears it.
func (db *JDB) UpdateState(ctx context.Context, uuid string, state State) error {
	i := db.indexOf(uuid)
	if i == -1 {
		return &vmerrors.NotFound{UUID: uuid}
	}
	db.index.Entries[i].State = state
	if state == StateRunningish {
		db.index.Entries[i].StartedAt = time.Now().UTC()
	} else {
		db.index.Entries[i].StartedAt = time.Time{}
	}
	return db.persistIndex()
}

// Remove deletes the per-UUID config file, then the index entry, then persists the index.
// Returns the entry's former position in the index.
func (db *JDB) Remove(ctx context.Context, uuid string) (int, error) {
	i := db.indexOf(uuid)
	if i == -1 {
		return -1, &vmerrors.NotFound{UUID: uuid}
	}
	if err := os.Remove(db.configPath(uuid)); err != nil && !os.IsNotExist(err) {
		return -1, vmerrors.Generic("removing config for %s: %w", uuid, err)
	}
	db.index.Entries = append(db.index.Entries[:i], db.index.Entries[i+1:]...)
	if err := db.persistIndex(); err != nil {
		return -1, err
	}
	return i, nil
}

func (db *JDB) loadConfig(uuid string) (jailconfig.ContainerConfig, error) {
	f, err := os.Open(db.configPath(uuid))
	if err != nil {
		return jailconfig.ContainerConfig{}, vmerrors.Generic("opening config for %s: %w", uuid, err)
	}
	defer f.Close()
	var cfg jailconfig.ContainerConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return jailconfig.ContainerConfig{}, vmerrors.Generic("decoding config for %s: %w", uuid, err)
	}
	return cfg, nil
}

// Get joins the index entry, config, and the two live OS entries for uuid — `<uuid>` as
// outer, `<uuid>.<uuid>` as inner, so nested children are visible too.
func (db *JDB) Get(ctx context.Context, uuid string) (Container, error) {
	i := db.indexOf(uuid)
	if i == -1 {
		return Container{}, &vmerrors.NotFound{UUID: uuid}
	}
	cfg, err := db.loadConfig(uuid)
	if err != nil {
		return Container{}, err
	}
	live, err := listLiveJails(ctx, db.exec)
	if err != nil {
		return Container{}, err
	}
	c := Container{Index: db.index.Entries[i], Config: cfg}
	if outer, ok := live[uuid]; ok {
		c.Outer = &outer
	}
	if inner, ok := live[fmt.Sprintf("%s.%s", uuid, uuid)]; ok {
		c.Inner = &inner
	}
	return c, nil
}

// Iter returns every container known to the index, in index order.
func (db *JDB) Iter(ctx context.Context) ([]Container, error) {
	live, err := listLiveJails(ctx, db.exec)
	if err != nil {
		return nil, err
	}
	out := make([]Container, 0, len(db.index.Entries))
	for _, e := range db.index.Entries {
		cfg, err := db.loadConfig(e.UUID)
		if err != nil {
			return nil, err
		}
		c := Container{Index: e, Config: cfg}
		if outer, ok := live[e.UUID]; ok {
			c.Outer = &outer
		}
		if inner, ok := live[fmt.Sprintf("%s.%s", e.UUID, e.UUID)]; ok {
			c.Inner = &inner
		}
		out = append(out, c)
	}
	return out, nil
}
