package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// systemMetadataPrefix marks entries written by macOS archive tools.
// They are artifacts of archive creation, not report content.
const systemMetadataPrefix = "__MACOSX/"

// ErrEntryNotFound is returned when a named entry does not exist in the archive.
var ErrEntryNotFound = errors.New("archive entry not found")

// Archive is a read-only view over a zip byte stream with named-entry lookup.
type Archive struct {
	reader  *zip.Reader
	entries map[string]*zip.File
	names   []string
}

// Open opens an archive from an in-memory byte slice.
func Open(data []byte) (*Archive, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	a := &Archive{
		reader:  reader,
		entries: make(map[string]*zip.File, len(reader.File)),
	}
	for _, f := range reader.File {
		if strings.HasPrefix(f.Name, systemMetadataPrefix) {
			continue
		}
		a.entries[f.Name] = f
		a.names = append(a.names, f.Name)
	}

	return a, nil
}

// Names returns the names of all entries in archive order.
func (a *Archive) Names() []string {
	return a.names
}

// Has reports whether an entry with the given name exists.
func (a *Archive) Has(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// Read returns the full decompressed content of the named entry.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	return data, nil
}

// Stream returns a streaming reader over the named entry.
// The caller must close the returned reader.
func (a *Archive) Stream(name string) (io.ReadCloser, error) {
	f, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return f.Open()
}
