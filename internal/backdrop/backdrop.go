// Package backdrop loads a custom stage background from a PDF page or a
// plain image file and scales it to the stage size.
package backdrop

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"
)

// Source yields a single backdrop image.
type Source interface {
	Render() (image.Image, error)
	Close() error
}

// PDFSource renders the first page of a PDF document via MuPDF.
type PDFSource struct {
	doc *fitz.Document
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("pdf %s has no pages", path)
	}
	return &PDFSource{doc: doc}, nil
}

func (p *PDFSource) Render() (image.Image, error) {
	return p.doc.ImageDPI(0, 150)
}

func (p *PDFSource) Close() error { return p.doc.Close() }

// ImageSource decodes a PNG or JPEG file.
type ImageSource struct {
	path string
}

func NewImageSource(path string) (*ImageSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &ImageSource{path: path}, nil
}

func (s *ImageSource) Render() (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return img, nil
}

func (s *ImageSource) Close() error { return nil }

// Open picks a source by file extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFSource(path)
	case ".png", ".jpg", ".jpeg":
		return NewImageSource(path)
	default:
		return nil, fmt.Errorf("unsupported backdrop format: %s", path)
	}
}

// Load opens path, renders it and scales the result to w x h.
func Load(path string, w, h int) (*image.RGBA, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	img, err := src.Render()
	if err != nil {
		return nil, err
	}
	return Scale(img, w, h), nil
}

// Scale resizes img to w x h with bilinear filtering.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
