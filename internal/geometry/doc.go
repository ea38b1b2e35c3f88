// Package geometry defines the bounding-box model shared by the detection,
// recognition and linking stages, and the transform that maps boxes between
// the native image pixel space and a scaled, offset display space.
//
// # Coordinate Spaces
//
// Two spaces are distinguished:
//   - Native: pixels of the source image (or of the legend crop). Values are
//     integral; detection and persistence work here.
//   - Display: the space a presentation layer draws in. Values may be
//     fractional because display = native*scale + offset.
//
// Boxes are always axis-aligned with (X, Y) at the top-left corner, X growing
// rightward and Y growing downward, matching image.Rectangle.
//
// # Immutability
//
// Every operation returns a new BoundingBox; nothing in this package mutates a
// box in place.
package geometry
