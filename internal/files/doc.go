// Package files finds and manages report artifacts on disk.
//
// Discovery lists chart images (for the messenger) and input exports.
// Manager removes stale artifacts before a new run writes its own.
package files
