// Package artifact persists everything the tools produce under one output
// root.
//
// Summary files (device index, rosters, blog id list) are rewritten on every
// run and encoded deterministically. Derived artifacts (device images,
// instruction documents, blog posts) are only ever created: if the file
// exists the write is skipped, so a later run never touches what an earlier
// run or a human left in place.
package artifact
