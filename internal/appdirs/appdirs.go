// Package appdirs provides the local directories of the app.
package appdirs

import (
	"fmt"
	"os"
	"path/filepath"

	xappdirs "github.com/chasinglogic/appdirs"
)

const (
	dbFileName    = "tasbeehbuddy.sqlite"
	logFileName   = "tasbeehbuddy.log"
	logFolderName = "log"
)

// AppDirs represents the app's local directories for storing data and logs.
type AppDirs struct {
	Data string
	Log  string
}

// New returns the directories for appName and makes sure they exist.
func New(appName string) (AppDirs, error) {
	ad := xappdirs.New(appName)
	x := AppDirs{
		Data: ad.UserData(),
		Log:  filepath.Join(ad.UserData(), logFolderName),
	}
	if err := x.create(); err != nil {
		return AppDirs{}, err
	}
	return x, nil
}

func (ad AppDirs) create() error {
	for _, p := range []string{ad.Data, ad.Log} {
		if err := os.MkdirAll(p, 0o700); err != nil {
			return fmt.Errorf("create app dir %s: %w", p, err)
		}
	}
	return nil
}

// DBPath returns the path of the database file.
func (ad AppDirs) DBPath() string {
	return filepath.Join(ad.Data, dbFileName)
}

// LogPath returns the path of the log file.
func (ad AppDirs) LogPath() string {
	return filepath.Join(ad.Log, logFileName)
}

// Paths returns the paths for showing them to users.
func (ad AppDirs) Paths() map[string]string {
	return map[string]string{
		"data": ad.Data,
		"db":   ad.DBPath(),
		"log":  ad.LogPath(),
	}
}
