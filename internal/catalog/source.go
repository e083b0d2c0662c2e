package catalog

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
)

// ErrEntryNotFound is returned when a Source has no entry of the given name.
var ErrEntryNotFound = errors.New("entry not found")

// Source is where one book's files live: a directory or an archive.
// Entry names are slash-separated and relative to the source root.
type Source interface {
	// Location is the directory or archive path, for logs and identity.
	Location() string
	// Entries lists every regular file.
	Entries() ([]string, error)
	// ReadFile returns the contents of one entry.
	ReadFile(name string) ([]byte, error)
}

// IsImage reports whether name has a decodable image extension.
func IsImage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif":
		return true
	default:
		return false
	}
}

// IsArchive reports whether name is a supported book archive.
func IsArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".cbz", ".rar", ".cbr", ".7z", ".cb7":
		return true
	default:
		return false
	}
}

// OpenSource returns the Source for a directory or archive path.
func OpenSource(p string) (Source, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return DirSource(p), nil
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip", ".cbz":
		return ZipSource(p), nil
	case ".rar", ".cbr":
		return RarSource(p), nil
	case ".7z", ".cb7":
		return SevenZipSource(p), nil
	default:
		return nil, fmt.Errorf("unsupported book source: %s", p)
	}
}

func cleanEntry(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// DirSource reads a book from a plain directory.
type DirSource string

func (d DirSource) Location() string { return string(d) }

func (d DirSource) Entries() ([]string, error) {
	var names []string
	err := filepath.WalkDir(string(d), func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(string(d), p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d, err)
	}
	return names, nil
}

func (d DirSource) ReadFile(name string) ([]byte, error) {
	name = cleanEntry(name)
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	data, err := os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, name, d)
	}
	return data, err
}

// ZipSource reads a book from a zip or cbz archive.
type ZipSource string

func (z ZipSource) Location() string { return string(z) }

func (z ZipSource) Entries() ([]string, error) {
	r, err := zip.OpenReader(string(z))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, cleanEntry(f.Name))
		}
	}
	return names, nil
}

func (z ZipSource) ReadFile(name string) ([]byte, error) {
	r, err := zip.OpenReader(string(z))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	name = cleanEntry(name)
	for _, f := range r.File {
		if cleanEntry(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, name, z)
}

// RarSource reads a book from a rar or cbr archive.
type RarSource string

func (r RarSource) Location() string { return string(r) }

func (r RarSource) each(fn func(h *rardecode.FileHeader, rd io.Reader) (bool, error)) error {
	f, err := os.Open(string(r))
	if err != nil {
		return err
	}
	defer f.Close()

	rd, err := rardecode.NewReader(f, "")
	if err != nil {
		return err
	}
	for {
		header, err := rd.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header.IsDir {
			continue
		}
		done, err := fn(header, rd)
		if err != nil || done {
			return err
		}
	}
}

func (r RarSource) Entries() ([]string, error) {
	var names []string
	err := r.each(func(h *rardecode.FileHeader, _ io.Reader) (bool, error) {
		names = append(names, cleanEntry(h.Name))
		return false, nil
	})
	return names, err
}

func (r RarSource) ReadFile(name string) ([]byte, error) {
	name = cleanEntry(name)
	var data []byte
	found := false
	err := r.each(func(h *rardecode.FileHeader, rd io.Reader) (bool, error) {
		if cleanEntry(h.Name) != name {
			return false, nil
		}
		found = true
		var err error
		data, err = io.ReadAll(rd)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, name, r)
	}
	return data, nil
}

// SevenZipSource reads a book from a 7z or cb7 archive.
type SevenZipSource string

func (s SevenZipSource) Location() string { return string(s) }

func (s SevenZipSource) Entries() ([]string, error) {
	r, err := sevenzip.OpenReader(string(s))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, cleanEntry(f.Name))
		}
	}
	return names, nil
}

func (s SevenZipSource) ReadFile(name string) ([]byte, error) {
	r, err := sevenzip.OpenReader(string(s))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	name = cleanEntry(name)
	for _, f := range r.File {
		if cleanEntry(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, name, s)
}
