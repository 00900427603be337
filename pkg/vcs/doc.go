// Package vcs implements the visual secret-sharing scheme: binarizing a
// raster, splitting it into shares at double resolution, and stacking
// shares back together.
//
// # Scheme
//
// Every source pixel becomes a 2×2 block in every share. A random base
// pattern p (left column dark, or right column dark) is drawn per pixel:
//
//   - ink pixels give every share the same p, so any stack shows p;
//   - background pixels give each share p or its complement, with at least
//     one of each in the set, so the full stack darkens the whole block.
//
// A single share is a uniform field of half-dark blocks and carries no
// visible trace of the source.
//
// # Usage
//
//	paths, err := vcs.GenerateShares("secret.png", "out/share", 3)
//	...
//	err = vcs.Reconstruct(paths, "out/reconstruction.png")
//
// Split and Stack are the in-memory forms of the same operations. All
// functions are stateless and safe to call concurrently.
package vcs
