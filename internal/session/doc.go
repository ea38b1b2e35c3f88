// Package session persists the state of an annotation session.
//
// Three files are involved:
//
//   - the session file, a flat JSON document holding every stage's output
//   - the legend box file, {x1,y1,x2,y2} of the confirmed legend region
//   - the links file, the linked_items array on its own
//
// All writes go to a temporary file in the target directory which is then
// renamed into place, so a crash never leaves a half-written document.
package session
