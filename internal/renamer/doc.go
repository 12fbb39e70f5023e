// Package renamer decides whether a file's embedded counter needs re-padding
// and performs the rename.
//
// A filename is split into three parts by a [Matcher]:
//
//	img7.jpg  ->  prefix "img", count "7", suffix ".jpg"
//
// The count is the first run of ASCII digits in the name. [Pad] re-renders
// it to a fixed width (zero-padding only, never truncating) and
// [Renamer.RenameIfNeeded] moves the file to its new name inside the same
// directory.
//
// Every per-file failure is returned as an [*Error] carrying a [Kind], so
// callers can tell a name that simply does not match apart from a rename
// the operating system refused.
package renamer
