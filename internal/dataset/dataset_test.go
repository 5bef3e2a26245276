package dataset

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePair(t *testing.T, train, valid string) Source {
	t.Helper()
	dir := t.TempDir()
	src := Source{
		TrainPath:      filepath.Join(dir, "train.csv"),
		ValidationPath: filepath.Join(dir, "validation.csv"),
	}
	mustWrite(t, src.TrainPath, train)
	mustWrite(t, src.ValidationPath, valid)
	return src
}

func TestLoadWellFormed(t *testing.T) {
	src := writePair(t,
		"3,0,1,2\n9,4,5,6\n0,7,8,9\n",
		"1,1,1,1\n5,0,0,2\n")
	ds, err := Load(src, Options{NumClasses: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Train.Rows())
	assert.Equal(t, 2, ds.Validation.Rows())
	assert.Equal(t, 3, ds.Train.Width())
	assert.Equal(t, ds.Train.Width(), ds.Validation.Width())
	assert.Equal(t, []int{3, 9, 0}, ds.Train.Labels)
	assert.Equal(t, []int{1, 5}, ds.Validation.Labels)
	assert.Equal(t, []float64{4, 5, 6}, ds.Train.Features.RawRowView(1))
	for _, l := range append(ds.Train.Labels, ds.Validation.Labels...) {
		assert.True(t, l >= 0 && l < 10)
	}
}

func TestLoadIsDeterministic(t *testing.T) {
	src := writePair(t, "0,1,2\n1,3,4\n", "1,5,6\n")
	first, err := Load(src, Options{NumClasses: 10})
	require.NoError(t, err)
	second, err := Load(src, Options{NumClasses: 10})
	require.NoError(t, err)
	require.Equal(t, first.Train.Labels, second.Train.Labels)
	require.Equal(t, first.Train.Features.RawMatrix().Data, second.Train.Features.RawMatrix().Data)
	require.Equal(t, first.Validation.Features.RawMatrix().Data, second.Validation.Features.RawMatrix().Data)
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		train string
		valid string
		want  error
	}{
		{"ragged row", "0,1,2\n1,3\n", "0,1,2\n", ErrMalformed},
		{"non numeric", "0,1,x\n", "0,1,2\n", ErrMalformed},
		{"empty field", "0,1,\n", "0,1,2\n", ErrMalformed},
		{"fractional label", "0.5,1,2\n", "0,1,2\n", ErrMalformed},
		{"fractional feature", "0,1.5,2\n", "0,1,2\n", ErrMalformed},
		{"label only", "0\n1\n", "0\n", ErrMalformed},
		{"label too large", "10,1,2\n", "0,1,2\n", ErrLabelRange},
		{"negative label", "0,1,2\n", "-1,1,2\n", ErrLabelRange},
		{"width mismatch", "0,1,2\n", "0,1,2,3\n", ErrShapeMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := writePair(t, tc.train, tc.valid)
			_, err := Load(src, Options{NumClasses: 10})
			require.Error(t, err)
			require.Truef(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}

func TestLoadTrimsPaddedFields(t *testing.T) {
	src := writePair(t, "0, 1, 2\n 1 ,3 , 4\n", "1,  5,6 \n")
	ds, err := Load(src, Options{NumClasses: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, ds.Train.Labels)
	assert.Equal(t, []float64{3, 4}, ds.Train.Features.RawRowView(1))
	assert.Equal(t, []float64{5, 6}, ds.Validation.Features.RawRowView(0))
}

func TestLoadMissingFile(t *testing.T) {
	src := writePair(t, "0,1\n", "0,1\n")
	src.ValidationPath += ".missing"
	_, err := Load(src, Options{NumClasses: 10})
	require.True(t, errors.Is(err, ErrMissingFile))
}
