package artifact

import (
	"bytes"
	"crypto"
	"crypto/sha512"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/evolution-x/site-metadata/internal/config"
)

var (
	// errOutsideRoot is returned for a relative path escaping the store root.
	errOutsideRoot = errors.New("path escapes the output directory")
	// errEmptyAsset is returned when an asset has no content.
	errEmptyAsset = errors.New("asset is empty")
)

// Store reads and writes artifacts below a root directory.
type Store struct {
	// root is the output directory every relative path is resolved against.
	root string
}

// NewStore returns a store rooted at root.
func NewStore(root string) *Store {
	return &Store{
		root: filepath.Clean(root),
	}
}

// Root returns the output directory.
func (s *Store) Root() string {
	return s.root
}

// Path resolves rel below the root.
func (s *Store) Path(rel ...string) (string, error) {
	joined := filepath.Join(rel...)
	if filepath.IsAbs(joined) || joined == ".." || strings.HasPrefix(joined, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", joined, errOutsideRoot)
	}

	return filepath.Join(s.root, joined), nil
}

// Exists reports whether rel is present.
func (s *Store) Exists(rel ...string) (bool, error) {
	path, err := s.Path(rel...)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// HasContent reports whether rel is present and non-empty. An empty file is
// what PutAsset leaves behind when interrupted before the apply.
func (s *Store) HasContent(rel ...string) (bool, error) {
	path, err := s.Path(rel...)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)

	switch {
	case err == nil:
		return info.Size() > 0, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// Read returns the content of rel.
func (s *Store) Read(rel ...string) ([]byte, error) {
	path, err := s.Path(rel...)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}

// ReadJSON decodes the JSON document at rel into v.
func (s *Store) ReadJSON(rel string, v any) error {
	data, err := s.Read(rel)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", rel, err)
	}

	return nil
}

// WriteJSON replaces rel with v encoded as two-space indented JSON and a
// trailing newline. The file is written to a sibling and renamed into place.
func (s *Store) WriteJSON(rel string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}

	path, err := s.Path(rel)
	if err != nil {
		return err
	}

	if err = s.ensureDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err = os.Chmod(tmp.Name(), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// Create writes data to rel only if rel does not exist yet.
// It reports whether the file was created.
func (s *Store) Create(rel string, data []byte) (bool, error) {
	path, err := s.Path(rel)
	if err != nil {
		return false, err
	}

	if err = s.ensureDir(path); err != nil {
		return false, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}

	_, err = file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)

		return false, fmt.Errorf("write %s: %w", path, err)
	}

	return true, nil
}

// CreateJSON encodes v like WriteJSON and writes it only if rel does not exist.
func (s *Store) CreateJSON(rel string, v any) (bool, error) {
	data, err := Encode(v)
	if err != nil {
		return false, err
	}

	return s.Create(rel, data)
}

// PutAsset stores a binary asset at rel unless something is already there.
// The placeholder created by the exclusive open is swapped for the content
// with go-update, which checks the SHA-512 of the content before the swap.
func (s *Store) PutAsset(rel string, data []byte) (bool, error) {
	if len(data) == 0 {
		return false, errEmptyAsset
	}

	path, err := s.Path(rel)
	if err != nil {
		return false, err
	}

	if err = removeEmpty(path); err != nil {
		return false, err
	}

	created, err := s.Create(rel, nil)
	if err != nil || !created {
		return false, err
	}

	checksum := sha512.Sum512(data)

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: config.DefaultFilePermissions,
		Checksum:   checksum[:],
		Hash:       crypto.SHA512,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		_ = os.Remove(path)

		return false, fmt.Errorf("apply %s: %w", path, err)
	}

	return true, nil
}

// Encode renders v the way every summary file is persisted.
func Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return append(data, '\n'), nil
}

func (s *Store) ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	return nil
}

// removeEmpty deletes path when it is an empty regular file.
func removeEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > 0 {
		return nil
	}

	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove placeholder %s: %w", path, err)
	}

	return nil
}
