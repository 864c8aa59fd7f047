// Package photo is the image source boundary for contact thumbnails.
//
// Fetcher resolves a photo reference (a bare path, file:// or http(s)://
// URL) to raw bytes and reports missing sources as ErrNotFound. Decoder
// decodes those bytes (PNG, JPEG, GIF, BMP and WebP are registered) and
// scales a centered square crop to the thumbnail size with CatmullRom
// resampling. Decoder is the decode strategy handed to the image loader.
package photo
