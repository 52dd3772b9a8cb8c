// Package perms holds the file and directory modes used for everything convtree writes:
// config files, log files, converted documents and generated docs.
package perms

import "os"

const (
	// RegularFile is owner read/write, group and others read.
	RegularFile os.FileMode = 0o644

	// RegularDir is owner read/write/execute, group and others read/execute.
	RegularDir os.FileMode = 0o755
)
