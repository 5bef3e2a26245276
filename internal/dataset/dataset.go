// Package dataset loads the labeled train/validation tables the sweep trains on.
//
// Both files are headerless comma-delimited numeric tables: the first column is
// the integer class label, the remaining columns are the features.
package dataset

import (
	"encoding/csv"
	"math"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Load failures. All of them are fatal for a run.
var (
	ErrMissingFile   = errors.New("input file missing")
	ErrMalformed     = errors.New("malformed input file")
	ErrLabelRange    = errors.New("label out of range")
	ErrShapeMismatch = errors.New("train and validation feature counts differ")
)

// Source locates the two input files.
type Source struct {
	TrainPath      string
	ValidationPath string
}

// Options controls validation while loading.
type Options struct {
	// NumClasses bounds the labels to [0, NumClasses). Zero disables the check.
	NumClasses int
}

// Split is one table with the label column separated from the features.
type Split struct {
	Features *mat.Dense
	Labels   []int
}

// Rows returns the number of examples.
func (s Split) Rows() int {
	return len(s.Labels)
}

// Width returns the number of features per example.
func (s Split) Width() int {
	if s.Features == nil {
		return 0
	}
	_, c := s.Features.Dims()
	return c
}

// Dataset is the ordered (train, validation) pair.
type Dataset struct {
	Train      Split
	Validation Split
}

// Load reads both files of src and checks they share the feature width.
func Load(src Source, opts Options) (*Dataset, error) {
	train, err := LoadSplit(src.TrainPath, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "load train")
	}
	valid, err := LoadSplit(src.ValidationPath, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "load validation")
	}
	if train.Width() != valid.Width() {
		return nil, errors.Wrapf(ErrShapeMismatch, "train has %d features, validation has %d",
			train.Width(), valid.Width())
	}
	return &Dataset{Train: train, Validation: valid}, nil
}

// LoadSplit reads one headerless CSV file into a Split. Fields may be padded
// with spaces; every value must be an integer.
func LoadSplit(path string, opts Options) (Split, error) {
	f, err := os.Open(path)
	if err != nil {
		return Split{}, errors.Wrapf(ErrMissingFile, "%s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return Split{}, errors.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	if len(records) == 0 {
		return Split{}, errors.Wrapf(ErrMalformed, "%s: no rows", path)
	}
	for _, rec := range records {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return Split{}, errors.Wrapf(ErrMalformed, "%s: %v", path, df.Err)
	}
	return fromDataFrame(path, df, opts.NumClasses)
}

func fromDataFrame(path string, df dataframe.DataFrame, numClasses int) (Split, error) {
	rows, cols := df.Dims()
	if rows == 0 {
		return Split{}, errors.Wrapf(ErrMalformed, "%s: no rows", path)
	}
	if cols < 2 {
		return Split{}, errors.Wrapf(ErrMalformed, "%s: need a label and at least one feature, got %d columns", path, cols)
	}

	features := mat.NewDense(rows, cols-1, nil)
	labels := make([]int, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			elem := df.Elem(r, c)
			if elem.IsNA() {
				return Split{}, errors.Wrapf(ErrMalformed, "%s: line %d column %d: missing or non-numeric value",
					path, r+1, c+1)
			}
			v := elem.Float()
			if math.IsInf(v, 0) {
				return Split{}, errors.Wrapf(ErrMalformed, "%s: line %d column %d: infinite value", path, r+1, c+1)
			}
			if v != math.Trunc(v) {
				return Split{}, errors.Wrapf(ErrMalformed, "%s: line %d column %d: %g is not an integer",
					path, r+1, c+1, v)
			}
			if c > 0 {
				features.Set(r, c-1, v)
				continue
			}
			label := int(v)
			if numClasses > 0 && (label < 0 || label >= numClasses) {
				return Split{}, errors.Wrapf(ErrLabelRange, "%s: line %d: label %d not in [0, %d)",
					path, r+1, label, numClasses)
			}
			labels[r] = label
		}
	}
	return Split{Features: features, Labels: labels}, nil
}
