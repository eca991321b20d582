//go:build !unix

package auditlog

import (
	"os"
)

// no advisory locking; appends are still serialized within the process
func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) error {
	return nil
}
