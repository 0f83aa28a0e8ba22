// Package uploads validates uploaded files and stores them under per-category
// directories.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"taskboard/apierror"
	"taskboard/config"

	"github.com/google/uuid"
)

// File is an upload as received from the transport. Err is set when the
// transport failed to deliver the file.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
	Err     error
}

type Gateway struct {
	dirs    map[string]string
	allowed map[string]bool
	maxSize int64
}

func NewGateway(cfg *config.Config) *Gateway {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	dirs := make(map[string]string, len(cfg.UploadDirs))
	for category, dir := range cfg.UploadDirs {
		dirs[category] = dir
	}
	return &Gateway{
		dirs:    dirs,
		allowed: allowed,
		maxSize: cfg.MaxUploadSize,
	}
}

// Dir returns the directory backing a category.
func (g *Gateway) Dir(category string) (string, bool) {
	dir, ok := g.dirs[category]
	return dir, ok && dir != ""
}

// Save validates f and writes it under the category directory. It returns
// the public path /uploads/<category>/<filename>. The client-supplied name
// is only used for its extension.
func (g *Gateway) Save(category string, f File) (string, error) {
	dir, ok := g.Dir(category)
	if !ok {
		return "", apierror.Config("Upload path misconfigured")
	}
	if f.Err != nil || f.Content == nil {
		return "", apierror.BadRequest("File upload failed")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if len(g.allowed) > 0 && !g.allowed[ext] {
		return "", apierror.Validation(apierror.CodeUnsupportedType, "Unsupported file type")
	}
	if f.Size > g.maxSize {
		return "", errTooLarge()
	}

	if err := os.MkdirAll(dir, 0o775); err != nil {
		return "", apierror.Storage("Unable to create upload directory", err)
	}

	filename := category + "_" + uuid.NewString()
	if ext != "" {
		filename += "." + ext
	}
	destination := filepath.Join(dir, filename)

	if err := g.write(destination, f.Content); err != nil {
		return "", err
	}

	return fmt.Sprintf("/uploads/%s/%s", category, filename), nil
}

func (g *Gateway) write(destination string, content io.Reader) error {
	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o664)
	if err != nil {
		return apierror.Storage("Failed to store uploaded file", err)
	}

	// Size is declared by the client; the limit is enforced again while copying.
	n, err := io.Copy(out, io.LimitReader(content, g.maxSize+1))
	if err == nil && n > g.maxSize {
		err = errTooLarge()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destination)
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			return err
		}
		return apierror.Storage("Failed to store uploaded file", err)
	}
	return nil
}

func errTooLarge() error {
	return apierror.Validation(apierror.CodeTooLarge, "File exceeds maximum size")
}
