package xlgraph

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Archive is the byte-level container the document is stored in. Entries
// are addressed by forward-slash paths.
type Archive interface {
	IsOpen() bool
	// Open loads the archive at path. An empty path opens a new, empty archive.
	Open(path string) error
	Close() error
	// Save writes the archive to path, or to the opened path when path is "".
	Save(path string) error
	// AddEntry creates or silently overwrites an entry.
	AddEntry(name, data string) error
	DeleteEntry(name string) error
	GetEntry(name string) (string, error)
	HasEntry(name string) bool
}

// ZipArchive is an in-memory Archive backed by archive/zip. All entries
// are read on Open and written in one pass on Save.
type ZipArchive struct {
	path    string
	open    bool
	entries map[string]string
	order   []string
}

// NewZipArchive returns an unopened ZipArchive.
func NewZipArchive() Archive {
	return &ZipArchive{}
}

func (z *ZipArchive) IsOpen() bool { return z.open }

func (z *ZipArchive) Open(path string) error {
	z.entries = make(map[string]string)
	z.order = nil
	z.path = path
	if path == "" {
		z.open = true
		return nil
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: open archive %q: %v", ErrInternal, path, err)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return fmt.Errorf("%w: read %s from %q: %v", ErrInternal, f.Name, path, err)
		}
		z.put(f.Name, data)
	}
	z.open = true
	return nil
}

func readZipFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (z *ZipArchive) put(name, data string) {
	if _, ok := z.entries[name]; !ok {
		z.order = append(z.order, name)
	}
	z.entries[name] = data
}

func (z *ZipArchive) Close() error {
	z.open = false
	z.entries = nil
	z.order = nil
	return nil
}

func (z *ZipArchive) Save(path string) error {
	if !z.open {
		return fmt.Errorf("%w: archive is not open", ErrInternal)
	}
	if path == "" {
		path = z.path
	}
	if path == "" {
		return fmt.Errorf("%w: no path to save the archive to", ErrInput)
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	names := z.writeOrder()
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			return fmt.Errorf("%w: add %s to archive: %v", ErrInternal, name, err)
		}
		if _, err := io.WriteString(fw, z.entries[name]); err != nil {
			return fmt.Errorf("%w: write %s to archive: %v", ErrInternal, name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: finish archive: %v", ErrInternal, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: save archive %q: %v", ErrInternal, path, err)
	}
	z.path = path
	return nil
}

// writeOrder keeps [Content_Types].xml first, which some readers expect,
// and everything else in insertion order.
func (z *ZipArchive) writeOrder() []string {
	names := append([]string(nil), z.order...)
	sort.SliceStable(names, func(i, j int) bool {
		return names[i] == contentTypesPath && names[j] != contentTypesPath
	})
	return names
}

func (z *ZipArchive) AddEntry(name, data string) error {
	if !z.open {
		return fmt.Errorf("%w: archive is not open", ErrInternal)
	}
	z.put(name, data)
	return nil
}

func (z *ZipArchive) DeleteEntry(name string) error {
	if !z.open {
		return fmt.Errorf("%w: archive is not open", ErrInternal)
	}
	if _, ok := z.entries[name]; !ok {
		return nil
	}
	delete(z.entries, name)
	for i, n := range z.order {
		if n == name {
			z.order = append(z.order[:i], z.order[i+1:]...)
			break
		}
	}
	return nil
}

func (z *ZipArchive) GetEntry(name string) (string, error) {
	data, ok := z.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: archive has no entry %q", ErrInternal, name)
	}
	return data, nil
}

func (z *ZipArchive) HasEntry(name string) bool {
	_, ok := z.entries[name]
	return ok
}
