// Package filesystem prepares installation directories and materializes the
// WordPress codebase into them.
//
// Staging a site runs these steps in order:
//
//  1. Create the target directory if it is missing.
//  2. Inspect it. Hidden entries alone count as empty. A prior installation
//     is recognized by marker files and is only replaced when the cleanup
//     policy allows it.
//  3. Remove the old content, skipping entries the OS refuses to delete.
//  4. Probe write access with a throwaway file.
//  5. Fetch the archive (once per batch), check its size and optional
//     checksum, extract it into a hidden staging directory under the target
//     and move the codebase root into place.
//  6. Verify marker files and read the WordPress version.
//
// Temporary files and directories are removed before any error is returned.
package filesystem
