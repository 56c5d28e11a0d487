//go:build unix

package vapid

import (
	"fmt"
	"os"
)

// checkFilePermissions verifies the key file is readable only by its
// owner. Any group or world bit fails the check. Owner read-only (0400)
// is accepted so keys mounted from read-only secret volumes load.
func checkFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		return fmt.Errorf("%w: got %04o, want owner-only (0600)", ErrInvalidPermissions, mode)
	}
	return nil
}

// setFilePermissions restricts the key file to owner read/write (0600).
func setFilePermissions(path string) error {
	return os.Chmod(path, 0o600)
}
