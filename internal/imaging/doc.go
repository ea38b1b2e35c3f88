// Package imaging provides the pixel-level building blocks used to find
// symbols and read labels on scanned blueprints.
//
// It covers image loading and caching, region cropping and saving,
// BT.601 grayscale with Otsu thresholding, HSV colour-range masks, a
// blurred Sobel edge map, binary morphology, and preview overlays.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive and Max is exclusive
//
// Masks and derived images returned by this package always have their
// origin at (0,0), even when the source image does not. Callers that
// work on a sub-image translate results by the source's Bounds().Min.
//
// # Masks
//
// A mask is an *image.Gray holding only 0 (background) and 255
// (foreground).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
package imaging
