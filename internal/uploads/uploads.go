package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
)

const invalidImageMessage = "Formato de imagen no válido. Usa png, jpg, jpeg, gif o webp"

// allowedTypes maps permitted extensions to the MIME types they must sniff
// as. Extension and content are both checked so renamed files do not pass.
var allowedTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Storage writes product images to the local uploads directory.
type Storage struct {
	dir string
}

// NewStorage ensures the uploads directory exists and returns a Storage
// rooted there.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

func sanitizeBase(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var sb strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "imagen"
	}
	return sb.String()
}

// Save validates and stores an uploaded image, returning the stored file
// name. The name is timestamped so concurrent uploads never collide.
func (s *Storage) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	wantMIME, ok := allowedTypes[ext]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, invalidImageMessage)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload")
	}
	if detected := mimetype.Detect(data); detected.String() != wantMIME {
		return "", pkgerrors.New(pkgerrors.CodeValidation, invalidImageMessage)
	}

	stored := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), sanitizeBase(originalName), ext)
	if err := os.WriteFile(filepath.Join(s.dir, stored), data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload")
	}
	return stored, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Storage) Remove(storedName string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(storedName)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
