package homedir

import (
	"os"
	"os/user"
)

// Get returns the current user's home directory, or the system temp
// root when no home directory can be determined.
func Get() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	if usr, err := user.Current(); err == nil && usr.HomeDir != "" {
		return usr.HomeDir
	}
	return os.TempDir()
}
