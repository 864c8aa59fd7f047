// Package imagecache holds decoded contact thumbnails.
//
// # Levels
//
// Memory is a size-bounded LRU (map plus doubly linked list) guarded by a
// single mutex. Its total resident size stays within the budget except
// while entries are pinned by in-flight deliveries. An entry larger than
// the whole budget is never stored.
//
// Disk is an optional LevelDB database. Keys are BLAKE3 hashes of the photo
// reference; values are zstd-compressed CBOR envelopes of RGBA pixels.
//
// Cache stacks the two: Get reads memory only and is what the display side
// calls; Lookup falls through to disk on the worker side and promotes hits;
// Put writes through to both.
package imagecache
