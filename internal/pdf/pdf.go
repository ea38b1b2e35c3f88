// Package pdf turns a PDF drawing into a raster image that the rest of the
// pipeline can work on.
package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ironsheep/legend-linker/internal/imaging"
)

// ErrNoImages is returned when the requested page carries no raster image.
var ErrNoImages = errors.New("no images on page")

// FirstPageImage extracts the largest image embedded in page 1 of pdfPath
// and writes it to <outDir>/<stem>/<stem>_page1.png, returning that path.
func FirstPageImage(pdfPath, outDir string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("pdf %s: %w", pdfPath, err)
	}

	images, err := ExtractPageImages(pdfPath, 1)
	if err != nil {
		return "", err
	}
	img := largest(images)
	if img == nil {
		return "", fmt.Errorf("%s page 1: %w", pdfPath, ErrNoImages)
	}

	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	out := PageImagePath(outDir, stem, 1)
	if err := imaging.SavePNG(img, out); err != nil {
		return "", err
	}
	return out, nil
}

// PageImagePath returns <outDir>/<stem>/<stem>_page<n>.png.
func PageImagePath(outDir, stem string, page int) string {
	return filepath.Join(outDir, stem, fmt.Sprintf("%s_page%d.png", stem, page))
}

// ExtractPageImages returns every image pdfcpu can extract from page.
func ExtractPageImages(pdfPath string, page int) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "legend-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(pdfPath, tempDir, []string{strconv.Itoa(page)}, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	byPage, err := collectExtractedImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to process extracted images: %w", err)
	}
	return byPage[page], nil
}

func largest(images []image.Image) image.Image {
	var best image.Image
	bestArea := 0
	for _, img := range images {
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	return best
}

func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// collectExtractedImages groups the images in dir by page number. It
// expects pdfcpu's naming: <name>_<page>_<idx>.<ext> or page_<page>_....
func collectExtractedImages(dir string) (map[int][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	result := make(map[int][]image.Image)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pageNum, err := parsePageFromFilename(e.Name())
		if err != nil {
			continue
		}
		img, err := loadImageFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		result[pageNum] = append(result[pageNum], img)
	}
	return result, nil
}

func parsePageFromFilename(filename string) (int, error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(name, "_")
	if strings.HasPrefix(name, "page_") && len(parts) >= 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			return n, nil
		}
		return 0, errors.New("invalid page number")
	}
	// pdfcpu default: <stem>_<page>_<objnr>
	if len(parts) >= 3 {
		if n, err := strconv.Atoi(parts[len(parts)-2]); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("not a page file")
}
