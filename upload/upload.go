// Package upload validates and stores files attached to bootcamps.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/pail"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	ImagesFolder    = "images"
	DocumentsFolder = "documents"
	ExcelFolder     = "excel"
)

var folders = map[string]string{
	"image/jpeg":               ImagesFolder,
	"image/png":                ImagesFolder,
	"application/pdf":          DocumentsFolder,
	"application/msword":       DocumentsFolder,
	"application/vnd.ms-excel": ExcelFolder,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DocumentsFolder,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ExcelFolder,
}

// Folder returns the folder files of the given MIME type are stored under.
// The boolean is false for types that are not accepted.
func Folder(mimeType string) (string, bool) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	folder, ok := folders[mimeType]
	return folder, ok
}

// File is an accepted upload.
type File struct {
	Name   string
	Type   string
	Size   int64
	Folder string
	header *multipart.FileHeader
}

// Validate checks an uploaded file against the accepted types and the size
// limit.
func Validate(header *multipart.FileHeader, maxBytes int64) (*File, error) {
	if header == nil {
		return nil, gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "please upload a file"}
	}
	mimeType := header.Header.Get("Content-Type")
	folder, ok := Folder(mimeType)
	if !ok {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("file type '%s' is not supported", mimeType),
		}
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("please upload a file smaller than %s", humanize.IBytes(uint64(maxBytes))),
		}
	}
	return &File{
		Name:   header.Filename,
		Type:   mimeType,
		Size:   header.Size,
		Folder: folder,
		header: header,
	}, nil
}

// FileName builds a collision-resistant name for a file attached to the
// given bootcamp. Directory parts of the original name are dropped.
func FileName(bootcampID, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return fmt.Sprintf("%s_%s_%s", bootcampID, uuid.New().String(), base)
}

// Key is the bucket key of a stored file.
func Key(folder, name string) string { return path.Join(folder, name) }

// Open returns the uploaded contents.
func (f *File) Open() (multipart.File, error) {
	if f.header == nil {
		return nil, errors.New("file has no contents")
	}
	src, err := f.header.Open()
	return src, errors.Wrapf(err, "opening upload '%s'", f.Name)
}

// Store writes the file to the bucket under its folder and returns the key.
func Store(ctx context.Context, bucket pail.Bucket, f *File, name string) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	return Put(ctx, bucket, f.Folder, name, src)
}

// Put writes the contents to the bucket and returns the key.
func Put(ctx context.Context, bucket pail.Bucket, folder, name string, contents io.Reader) (string, error) {
	key := Key(folder, name)
	if err := bucket.Put(ctx, key, contents); err != nil {
		return "", errors.Wrapf(err, "storing file '%s'", key)
	}
	return key, nil
}

// Delete removes a stored file. A file that does not exist is not found.
func Delete(ctx context.Context, bucket pail.Bucket, key string) error {
	exists, err := Exists(ctx, bucket, key)
	if err != nil {
		return err
	}
	if !exists {
		return gimlet.ErrorResponse{StatusCode: http.StatusNotFound, Message: "file not found"}
	}
	return errors.Wrapf(bucket.Remove(ctx, key), "removing file '%s'", key)
}

// Exists reports whether the key is stored in the bucket.
func Exists(ctx context.Context, bucket pail.Bucket, key string) (bool, error) {
	r, err := bucket.Get(ctx, key)
	if err != nil {
		if pail.IsKeyNotFoundError(err) || os.IsNotExist(errors.Cause(err)) {
			return false, nil
		}
		return false, errors.Wrapf(err, "reading file '%s'", key)
	}
	return true, r.Close()
}
