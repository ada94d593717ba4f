package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PDFContentType is the only media type the upload pipeline accepts
const PDFContentType = "application/pdf"

// File is the file selected for upload
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsPDF reports whether the declared media type is exactly application/pdf
func (f *File) IsPDF() bool {
	return f.ContentType == PDFContentType
}

// LoadFile reads the file at path. An empty path means no file was
// selected and returns a nil file. When contentType is empty it is
// declared from the file extension.
func LoadFile(path, contentType string) (*File, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	name := filepath.Base(path)
	if contentType == "" {
		contentType = ContentTypeFor(name)
	}

	return &File{
		Name:        name,
		ContentType: strings.ToLower(strings.TrimSpace(contentType)),
		Data:        data,
	}, nil
}

// ContentTypeFor declares a media type from the filename extension
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDFContentType
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
