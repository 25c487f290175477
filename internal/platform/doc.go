// Package platform wraps filesystem calls whose behavior differs between
// operating systems. On Unix it applies permission bits directly; on Windows,
// which has no Unix-style mode bits, those calls are no-ops.
package platform
