package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// Output receives one formatted http exchange at a time.
type Output interface {
	Write(id string, contents string)
}

// matches the ids handed out by DumpExchanges, ex. menu-12.txt
var exchangeFile = regexp.MustCompile(`^[a-z]+-[0-9]+\.txt$`)

// FilesystemOutput writes every exchange to its own file in a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates dir if needed and removes the exchange files a
// previous run left in it. Anything else in dir is left alone.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !exchangeFile.MatchString(entry.Name()) {
			continue
		}
		err = os.Remove(filepath.Join(dir, entry.Name()))
		if err != nil {
			return FilesystemOutput{}, err
		}
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http exchange file", "id", id, "err", err)
	}
}
