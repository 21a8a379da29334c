// Package steam wraps the two upstream surfaces the importer depends on: the
// charts API (ranked list of most played games) and the store appdetails API
// (per-app metadata, cached on disk with a TTL and throttled by a shared rate
// limiter). It also owns the CDN knowledge: which store-provided image URL an
// image kind prefers, the kind-aware primary steamstatic URL, and the generic
// fallback patterns the thumbnail cache walks through.
package steam
