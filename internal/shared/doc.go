// Package shared groups helpers used across packages that belong to no
// single layer. Only the testutil subpackage lives here today: log capture
// for slog and a small lost-sales fixture.
package shared
