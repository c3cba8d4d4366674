// Package uploads stores uploaded files on the local disk.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
)

// URL prefixes of stored files; the API serves each of them as a static directory.
const (
	ReceiptsPrefix = "uploads"
	PicturesPrefix = "profile-pictures"
)

var pictureExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}

type DiskStore struct {
	receiptsDir string
	picturesDir string
	maxSize     int64
	now         func() time.Time // mockable
}

// NewDiskStore creates the upload directories if needed.
func NewDiskStore(conf core.UploadsConfig) (*DiskStore, error) {
	for _, dir := range []string{conf.Dir, conf.PicturesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating %s", dir)
		}
	}
	return &DiskStore{
		receiptsDir: conf.Dir,
		picturesDir: conf.PicturesDir,
		maxSize:     conf.MaxSize,
		now:         time.Now,
	}, nil
}

func (s *DiskStore) ReceiptsDir() string { return s.receiptsDir }
func (s *DiskStore) PicturesDir() string { return s.picturesDir }

func tooLarge(field string, max int64) error {
	return core.NewValidationError(nil, core.FieldError{
		Field: field,
		Error: fmt.Sprintf("file too large (max %d bytes)", max),
	})
}

// write copies content to dir/name, removing the file again if it exceeds the size limit.
func (s *DiskStore) write(dir, name, field string, content io.Reader) error {
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}

	src := content
	if s.maxSize > 0 {
		src = io.LimitReader(content, s.maxSize+1)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = tooLarge(field, s.maxSize)
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		if _, ok := err.(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "writing file")
	}
	return nil
}

// SaveReceipt stores a payment receipt as "uploads/<unixmilli>-<basename>".
func (s *DiskStore) SaveReceipt(originalName string, content io.Reader) (string, error) {
	base := strings.ReplaceAll(filepath.Base(filepath.Clean("/"+originalName)), " ", "_")
	if base == "/" || base == "." {
		base = "receipt"
	}
	ms := s.now().UnixMilli()
	name := fmt.Sprintf("%d-%s", ms, base)
	err := s.write(s.receiptsDir, name, "receipt", content)
	for i := 1; os.IsExist(errors.Cause(err)) && i < 10; i++ {
		// same name uploaded within the same millisecond; nothing was read yet
		name = fmt.Sprintf("%d-%d-%s", ms, i, base)
		err = s.write(s.receiptsDir, name, "receipt", content)
	}
	if err != nil {
		return "", err
	}
	return path.Join(ReceiptsPrefix, name), nil
}

// SaveProfilePicture stores an image as "profile-pictures/<unixmilli>-<uuid>.<ext>".
func (s *DiskStore) SaveProfilePicture(originalName string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !pictureExts[ext] {
		return "", core.NewValidationError(nil, core.FieldError{
			Field: "profilePicture",
			Error: "only jpeg, jpg, png and gif images are allowed",
		})
	}
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	if err := s.write(s.picturesDir, name, "profilePicture", content); err != nil {
		return "", err
	}
	return path.Join(PicturesPrefix, name), nil
}
