package dataset

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pkg/errors"
)

var (
	trainRegexp      = regexp.MustCompile(`(?i)train.*\.csv$`)
	validationRegexp = regexp.MustCompile(`(?i)valid.*\.csv$`)
)

// Discover finds the train and validation CSV files directly beneath root.
// Exactly one file of each kind must be present.
func Discover(root string) (Source, error) {
	var trains, valids []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case validationRegexp.MatchString(d.Name()):
			valids = append(valids, path)
		case trainRegexp.MatchString(d.Name()):
			trains = append(trains, path)
		}
		return nil
	})
	if err != nil {
		return Source{}, errors.Wrapf(ErrMissingFile, "discover data files under %q: %v", root, err)
	}
	sort.Strings(trains)
	sort.Strings(valids)
	if len(trains) != 1 || len(valids) != 1 {
		return Source{}, errors.Wrapf(ErrMissingFile,
			"discover data files under %q: want one train and one validation csv, found %v and %v",
			root, trains, valids)
	}
	return Source{TrainPath: trains[0], ValidationPath: valids[0]}, nil
}
