// Package importer runs the periodic catalog import as one sequential job:
// acquire the run lock, rank and filter the charts list against store
// metadata (phase 1), resolve thumbnails through the image cache (phase 2),
// then atomically swap the persisted snapshot. Filtering strictly precedes
// image traffic so excluded entries never cost a download. A held lock means
// another run is in progress and is reported as ErrLockHeld, which callers
// treat as a silent successful exit.
package importer
