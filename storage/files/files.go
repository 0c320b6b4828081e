// Package files implements the multi-file on-disk dataset backend.
//
// Each property occupies its own files under the dataset directory: a
// JSON sidecar describing element type and storage form, plus flat
// binary or newline-delimited text payloads. Binary payloads are raw
// little-endian fixed-width elements with no header and are
// memory-mapped for reads; the pre-allocate/fill protocol pre-sizes
// them and maps them read-write so callers fill arrays in place.
//
// Layout under the dataset directory:
//
//	daf.json                          {"version":[major,minor]}
//	scalars/<name>.json
//	axes/<axis>.txt
//	vectors/<axis>/<name>.json        + payload files
//	matrices/<rows>/<cols>/<name>.json + payload files
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tanaylab/dafgo/codec"
	"github.com/tanaylab/dafgo/internal/mmap"
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
)

const (
	versionFile  = "daf.json"
	majorVersion = 1
	minorVersion = 0
)

// VersionError indicates on-disk data written by an incompatible
// format version: a different major version, or a minor version newer
// than this code supports.
type VersionError struct {
	Path  string
	Major int
	Minor int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("incompatible format version: %d.%d (supported: %d.%d) in: %s",
		e.Major, e.Minor, majorVersion, minorVersion, e.Path)
}

// BadNameError indicates a scalar/axis/property name that cannot be
// used as a file name.
type BadNameError struct {
	Name string
}

func (e *BadNameError) Error() string {
	return fmt.Sprintf("invalid name for a file-backed property: %q", e.Name)
}

type versionMeta struct {
	Version [2]int `json:"version"`
}

// Files is the multi-file disk backend. It implements storage.Format;
// wrap it with storage.Wrap for the public API.
type Files struct {
	base storage.FormatBase
	dir  string
	// mu guards maps and axisLens. Both fill lazily on reads, and
	// the dataset lock admits any number of concurrent readers.
	mu sync.Mutex
	// maps holds the open payload mappings by path so repeated reads
	// reuse one mapping and Close can release them all.
	maps map[string]*mmap.File
	// axisLens caches axis lengths; reading an axis's entry file to
	// length-check every write would defeat the sidecar design.
	axisLens map[string]int
}

// Create initializes an empty dataset at dir (which must not already
// contain one) and returns the backend.
func Create(dir string) (*Files, error) {
	if _, err := os.Stat(filepath.Join(dir, versionFile)); err == nil {
		return nil, fmt.Errorf("dataset already exists in: %s", dir)
	}
	for _, sub := range []string{"scalars", "axes", "vectors", "matrices"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, err
		}
	}
	raw, err := codec.Default.Marshal(versionMeta{Version: [2]int{majorVersion, minorVersion}})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, versionFile), raw, 0o644); err != nil {
		return nil, err
	}
	return newFiles(dir), nil
}

// Open opens an existing dataset at dir, refusing incompatible format
// versions.
func Open(dir string) (*Files, error) {
	raw, err := os.ReadFile(filepath.Join(dir, versionFile))
	if err != nil {
		return nil, err
	}
	var meta versionMeta
	if err := codec.Default.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	if meta.Version[0] != majorVersion || meta.Version[1] > minorVersion {
		return nil, &VersionError{Path: dir, Major: meta.Version[0], Minor: meta.Version[1]}
	}
	return newFiles(dir), nil
}

func newFiles(dir string) *Files {
	return &Files{
		base:     storage.NewFormatBase(filepath.Base(dir), true),
		dir:      dir,
		maps:     make(map[string]*mmap.File),
		axisLens: make(map[string]int),
	}
}

// Dir returns the dataset directory.
func (d *Files) Dir() string { return d.dir }

// Close releases every open payload mapping. Arrays fetched from the
// dataset alias mapped memory and must not be used afterwards.
func (d *Files) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	for path, m := range d.maps {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		delete(d.maps, path)
	}
	return err
}

var _ storage.Format = (*Files)(nil)

// Base returns the shared backend state.
func (d *Files) Base() *storage.FormatBase { return &d.base }

// checkName rejects names that would escape the dataset directory or
// collide with the payload naming scheme.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\\n") {
		return &BadNameError{Name: name}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// namesIn lists the property names in dir by stripping ext from the
// matching file names.
func namesIn(dir, ext string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ext))
	}
	return names
}

// --- scalars ---

func (d *Files) scalarPath(name string) string {
	return filepath.Join(d.dir, "scalars", name+".json")
}

func (d *Files) HasScalar(name string) bool {
	d.base.AssertRead("HasScalar")
	return checkName(name) == nil && exists(d.scalarPath(name))
}

func (d *Files) ScalarNames() []string {
	d.base.AssertRead("ScalarNames")
	return namesIn(filepath.Join(d.dir, "scalars"), ".json")
}

func (d *Files) Scalar(name string) (model.Value, error) {
	d.base.AssertRead("Scalar")
	raw, err := os.ReadFile(d.scalarPath(name))
	if err != nil {
		return model.Value{}, err
	}
	var value model.Value
	if err := codec.Default.Unmarshal(raw, &value); err != nil {
		return model.Value{}, err
	}
	return value, nil
}

func (d *Files) PutScalar(name string, value model.Value) error {
	d.base.AssertWrite("PutScalar")
	if err := checkName(name); err != nil {
		return err
	}
	raw, err := codec.Default.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(d.scalarPath(name), raw, 0o644)
}

func (d *Files) DropScalar(name string) error {
	d.base.AssertWrite("DropScalar")
	return os.Remove(d.scalarPath(name))
}

// --- axes ---

func (d *Files) axisPath(axis string) string {
	return filepath.Join(d.dir, "axes", axis+".txt")
}

func (d *Files) HasAxis(axis string) bool {
	d.base.AssertRead("HasAxis")
	return checkName(axis) == nil && exists(d.axisPath(axis))
}

func (d *Files) AxisNames() []string {
	d.base.AssertRead("AxisNames")
	return namesIn(filepath.Join(d.dir, "axes"), ".txt")
}

func (d *Files) AxisEntries(axis string) ([]string, error) {
	d.base.AssertRead("AxisEntries")
	raw, err := os.ReadFile(d.axisPath(axis))
	if err != nil {
		return nil, err
	}
	entries := splitLines(string(raw))
	d.mu.Lock()
	d.axisLens[axis] = len(entries)
	d.mu.Unlock()
	return entries, nil
}

func (d *Files) AxisLen(axis string) (int, error) {
	d.base.AssertRead("AxisLen")
	d.mu.Lock()
	n, ok := d.axisLens[axis]
	d.mu.Unlock()
	if ok {
		return n, nil
	}
	entries, err := d.AxisEntries(axis)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (d *Files) PutAxis(axis string, entries []string) error {
	d.base.AssertWrite("PutAxis")
	if err := checkName(axis); err != nil {
		return err
	}
	if err := os.WriteFile(d.axisPath(axis), []byte(joinLines(entries)), 0o644); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(d.dir, "vectors", axis), 0o755); err != nil {
		return err
	}
	d.mu.Lock()
	d.axisLens[axis] = len(entries)
	d.mu.Unlock()
	return nil
}

func (d *Files) DropAxis(axis string) error {
	d.base.AssertWrite("DropAxis")
	d.mu.Lock()
	delete(d.axisLens, axis)
	d.mu.Unlock()
	vectorsDir := filepath.Join(d.dir, "vectors", axis)
	d.closeMapsUnder(vectorsDir)
	if err := os.RemoveAll(vectorsDir); err != nil {
		return err
	}
	rowsDir := filepath.Join(d.dir, "matrices", axis)
	d.closeMapsUnder(rowsDir)
	if err := os.RemoveAll(rowsDir); err != nil {
		return err
	}
	otherRows, err := os.ReadDir(filepath.Join(d.dir, "matrices"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for _, entry := range otherRows {
		if !entry.IsDir() {
			continue
		}
		colsDir := filepath.Join(d.dir, "matrices", entry.Name(), axis)
		d.closeMapsUnder(colsDir)
		if err := os.RemoveAll(colsDir); err != nil {
			return err
		}
	}
	return os.Remove(d.axisPath(axis))
}

func (d *Files) closeMapsUnder(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prefix := dir + string(filepath.Separator)
	for path, m := range d.maps {
		if strings.HasPrefix(path, prefix) {
			_ = m.Close()
			delete(d.maps, path)
		}
	}
}

// splitLines parses a newline-terminated text payload. An empty
// payload has no entries; otherwise every line, terminated by the
// final newline, is one entry (so a payload of "\n" is one empty
// entry, which string vectors can legitimately hold).
func splitLines(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(raw, "\n"), "\n")
}

func joinLines(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	return strings.Join(entries, "\n") + "\n"
}
