// Package extract turns uploaded documents into newline-joined plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindDocx Kind = "docx"
	KindPDF  Kind = "pdf"
	KindText Kind = "txt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtraction        = errors.New("extraction failed")
)

// Error wraps a reader failure. errors.Is(err, ErrExtraction) holds for every *Error.
type Error struct {
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrExtraction }

// Reader produces the visible text of one file.
type Reader interface {
	Read(ctx context.Context, path string) (string, error)
}

// Detect maps a filename to a Kind by extension.
func Detect(filename string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return KindDocx, nil
	case ".pdf":
		return KindPDF, nil
	case ".txt", ".text":
		return KindText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// SupportedKinds lists the kinds Detect can return.
func SupportedKinds() []Kind {
	return []Kind{KindDocx, KindPDF, KindText}
}

type Extractor struct {
	readers map[Kind]Reader
}

func New() *Extractor {
	return &Extractor{readers: map[Kind]Reader{
		KindDocx: DocxReader{},
		KindPDF:  PDFReader{},
		KindText: TextReader{},
	}}
}

// Register replaces the reader used for kind.
func (x *Extractor) Register(kind Kind, r Reader) {
	x.readers[kind] = r
}

func (x *Extractor) Extract(ctx context.Context, path string, kind Kind) (string, error) {
	r, ok := x.readers[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}
	if err := ctx.Err(); err != nil {
		return "", &Error{Path: path, Kind: kind, Err: err}
	}
	text, err := r.Read(ctx, path)
	if err != nil {
		return "", &Error{Path: path, Kind: kind, Err: err}
	}
	return text, nil
}

// ExtractFile detects the kind from path and extracts it.
func (x *Extractor) ExtractFile(ctx context.Context, path string) (string, Kind, error) {
	kind, err := Detect(path)
	if err != nil {
		return "", "", err
	}
	text, err := x.Extract(ctx, path, kind)
	return text, kind, err
}
