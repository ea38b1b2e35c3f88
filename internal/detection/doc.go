// Package detection finds candidate symbol regions on blueprint legends.
//
// The pipeline has three stages:
//
//  1. Preprocess: a Segmenter fuses an Otsu dark-pixel threshold, an HSV
//     colour range and a blurred Sobel edge map into one binary mask, then
//     cleans it with morphological closing and opening.
//  2. Extract: ExtractBoxes reduces the mask to the bounding boxes of its
//     external 8-connected components, filtered by area.
//  3. Merge: MergeBoxes greedily folds boxes whose top-left corners are
//     close together.
//
// Detector wires the stages together and numbers the surviving boxes as
// SymbolCandidates. DetectNear runs the same pipeline in a small window
// around a click.
//
// # Backends
//
// The default Segmenter is pure Go. Building with -tags gocv swaps in an
// OpenCV implementation of the same mask; SegmenterBackend reports which
// one is compiled in.
//
// # Coordinate System
//
// Masks are zero-origin. Detector translates boxes back into the pixel
// space of the image it was given, so detecting on a sub-image yields
// coordinates in the parent image.
package detection
