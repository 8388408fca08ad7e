// Package render provides concrete targets for scene drawing.
//
//   - [Canvas]: retained in-memory target, the headless rendering surface
//   - [Tee]: fans one scene out to several targets
//   - [SVG]: exports a canvas as a standalone SVG document
//   - [Terminal]: draws a canvas as themed terminal text
//
// Marker colors come from a [Theme]; blended variants (sorted, visited,
// faded) are computed in Lab space so they stay readable on every background.
package render
