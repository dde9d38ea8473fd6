// Package storage writes the generated calendar file to disk.
//
// The output path may start with "~/" to refer to the user's home directory.
// Writes go to a temporary file in the destination directory which is then
// renamed over the target, so readers see either the previous file or the
// complete new one, never a truncated file.
package storage
