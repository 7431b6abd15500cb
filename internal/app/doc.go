// Package app wires the application together: it owns the isolated logger,
// loads the manifest and lock file, fans the build out over the platform
// matrix, and exposes the composed per-platform outputs.
package app
