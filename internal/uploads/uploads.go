// Package uploads stores admin image uploads on local disk.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted upload.
const MaxSize = 10 << 20

var (
	ErrTooLarge        = errors.New("file is larger than 10 MB")
	ErrUnsupportedType = errors.New("only image uploads are allowed")
	ErrEmpty           = errors.New("file is empty")
)

type Stored struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type Storage struct {
	dir     string
	baseURL string
}

func NewStorage(dir, baseURL string) *Storage {
	return &Storage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Storage) Dir() string { return s.dir }

// Save checks the size and sniffed type of fh and writes it as <uuid><ext>.
// The client's file name and Content-Type are ignored.
func (s *Storage) Save(fh *multipart.FileHeader) (*Stored, error) {
	if fh.Size > MaxSize {
		return nil, ErrTooLarge
	}
	if fh.Size == 0 {
		return nil, ErrEmpty
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.save(src)
}

func (s *Storage) save(src io.ReadSeeker) (*Stored, error) {
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect type: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mt.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	name := uuid.NewString() + mt.Extension()
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// one byte past the limit tells us the header lied about the size
	n, err := io.Copy(dst, io.LimitReader(src, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	if n > MaxSize {
		_ = os.Remove(dst.Name())
		return nil, ErrTooLarge
	}

	return &Stored{
		Name:     name,
		URL:      fmt.Sprintf("%s/uploads/%s", s.baseURL, name),
		MimeType: mt.String(),
		Size:     n,
	}, nil
}
