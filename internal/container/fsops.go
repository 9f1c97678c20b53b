package container

import "os"

// renameFile performs the final atomic commit step of the temp-file-then-
// rename pattern, grounded on the same idiom used elsewhere in the
// retrieved corpus for atomic file emission.
func renameFile(tmpPath, finalPath string) error {
	return os.Rename(tmpPath, finalPath)
}

// removeFile discards a temp file; used on abort paths.
func removeFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
