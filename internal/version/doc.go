// Package version reports build metadata of the loop guard binaries.
package version
