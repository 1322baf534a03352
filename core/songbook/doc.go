// Package songbook connects the ChordPro engine to the places songs enter and
// leave the system.
//
// Prepare is the write path: it normalizes submitted text, checks its
// structure under a Policy, merges the caller's metadata into the directives,
// and returns the text to store together with a BLAKE3 digest. Render is the
// read path: it extracts metadata once and tokenizes every line, caching the
// result by digest.
//
// Neither path touches storage. Callers compare digests with Changed to decide
// whether a new version needs to be kept.
package songbook
