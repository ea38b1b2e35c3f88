//go:build !gocv

package detection

import "image"

// SegmenterBackend names the compiled-in segmentation backend.
const SegmenterBackend = "go"

type goSegmenter struct {
	opts PreprocessOptions
}

// NewSegmenter returns the pure-Go segmenter. Build with -tags gocv for the
// OpenCV backend.
func NewSegmenter(opts PreprocessOptions) Segmenter {
	return &goSegmenter{opts: opts}
}

func (s *goSegmenter) Segment(img image.Image) (*image.Gray, error) {
	return Mask(img, s.opts)
}
