// Package imagecache implements the content-addressed thumbnail cache. A
// Cache instance owns one flat directory of <sha1>.<ext> files; the key is
// derived from the ordered candidate URL set and the existence of the entry
// file is the sole cache state (no index). Population walks the candidates
// through a GET-only fetch and an in-memory transcode (sniffed decode,
// auto-orientation, bounded downsize, webp/jpg re-encode) and lands entries
// with temp file + rename so a partial write is never observable. Published
// references append the entry mtime as a cache-busting version parameter.
package imagecache
