// store.go - media store: $HOME/media/<folder>/<file> layout
//
// Grounded on spec.md §6's media store section, implemented with the plain
// os/path idioms the teacher uses for its on-disk resources (terminal_host.go,
// runtime_ipc.go's socket path handling) rather than any new persistence
// framework - the store is the only persisted artifact, so it stays a thin
// wrapper over the filesystem.

package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"

	_ "golang.org/x/image/bmp"
)

// MaxNameLen bounds folder and file name length (spec.md §6: "length <=
// defined constant").
const MaxNameLen = 32

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidName reports whether name satisfies the store's character-class and
// length restriction.
func ValidName(name string) bool {
	return len(name) > 0 && len(name) <= MaxNameLen && nameRE.MatchString(name)
}

// Info describes one file within a folder. Width/Height are zero for video
// files and for image files whose header couldn't be decoded.
type Info struct {
	Name    string
	Size    int64
	IsVideo bool
	Width   int
	Height  int
}

// Store is the $HOME/media root, holding one level of folders each
// containing a flat mix of image and video files.
type Store struct {
	Root string
}

// New constructs a Store rooted at root, creating it if absent.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: create root %s: %w", root, err)
	}
	return &Store{Root: root}, nil
}

func (s *Store) folderPath(folder string) (string, error) {
	if !ValidName(folder) {
		return "", fmt.Errorf("media: invalid folder name %q", folder)
	}
	return filepath.Join(s.Root, folder), nil
}

func (s *Store) filePath(folder, file string) (string, error) {
	fp, err := s.folderPath(folder)
	if err != nil {
		return "", err
	}
	if !ValidName(file) {
		return "", fmt.Errorf("media: invalid file name %q", file)
	}
	return filepath.Join(fp, file), nil
}

// Folders lists every media folder (get-media-dirs).
func (s *Store) Folders() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("media: read root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Files lists every file in folder (get-media-files).
func (s *Store) Files(folder string) ([]string, error) {
	fp, err := s.folderPath(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fp)
	if err != nil {
		return nil, fmt.Errorf("media: read folder %s: %w", folder, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func isVideoExt(ext string) bool {
	switch ext {
	case ".mp4", ".avi", ".mov", ".mkv", ".webm":
		return true
	default:
		return false
	}
}

// Info reports size/kind for one file (get-media-info).
func (s *Store) Info(folder, file string) (Info, error) {
	fp, err := s.filePath(folder, file)
	if err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(fp)
	if err != nil {
		return Info{}, fmt.Errorf("media: stat %s/%s: %w", folder, file, err)
	}
	info := Info{Name: file, Size: fi.Size(), IsVideo: isVideoExt(filepath.Ext(file))}
	if !info.IsVideo {
		if w, h, err := decodeImageDims(fp); err == nil {
			info.Width, info.Height = w, h
		}
	}
	return info, nil
}

// decodeImageDims reads just enough of an image file to report its pixel
// dimensions, via the decoders registered through image.RegisterFormat
// (stdlib PNG/JPEG/GIF, golang.org/x/image/bmp for the BMP family). Decode
// failures are not fatal to get-media-info: the caller falls back to a
// zero-dimension Info rather than rejecting the file.
func decodeImageDims(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Delete removes a file, or an entire folder when file is empty (delete-media).
func (s *Store) Delete(folder, file string) error {
	if file == "" {
		fp, err := s.folderPath(folder)
		if err != nil {
			return err
		}
		return os.RemoveAll(fp)
	}
	fp, err := s.filePath(folder, file)
	if err != nil {
		return err
	}
	return os.Remove(fp)
}

// Writer is returned by CreateFile to receive put-file-chunk streams.
type Writer struct {
	f        *os.File
	expected int64
	written  int64
}

// CreateFile begins a put-file transfer of the declared size (put-file).
func (s *Store) CreateFile(folder, file string, size int64) (*Writer, error) {
	fp, err := s.filePath(folder, file)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return nil, fmt.Errorf("media: create folder: %w", err)
	}
	f, err := os.Create(fp)
	if err != nil {
		return nil, fmt.Errorf("media: create %s/%s: %w", folder, file, err)
	}
	return &Writer{f: f, expected: size}, nil
}

// WriteChunk appends one put-file-chunk.
func (w *Writer) WriteChunk(data []byte) error {
	n, err := w.f.Write(data)
	w.written += int64(n)
	return err
}

// Done finalizes the transfer (put-file-done), verifying the declared size
// was received in full.
func (w *Writer) Done() error {
	defer w.f.Close()
	if w.written != w.expected {
		return fmt.Errorf("media: short transfer: wrote %d of declared %d bytes", w.written, w.expected)
	}
	return w.f.Sync()
}

// Abort discards a partial transfer.
func (w *Writer) Abort() error {
	defer w.f.Close()
	return os.Remove(w.f.Name())
}
