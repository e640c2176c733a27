package evaluation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassIndex(t *testing.T) {
	dataset := &Dataset{
		ImageIDs: []string{"a", "b", "c"},
		Objects: map[string][]GroundTruthObject{
			"a": {
				{Class: "car", Box: box(0, 0, 10, 10)},
				{Class: "person", Box: box(5, 5, 8, 8)},
				{Class: "car", Box: box(20, 20, 30, 30), Difficult: true},
			},
			"b": {
				{Class: "car", Box: box(1, 1, 2, 2)},
			},
			// Not part of the image set; must be ignored.
			"z": {
				{Class: "car", Box: box(1, 1, 2, 2)},
			},
		},
	}

	idx, err := NewClassIndex(dataset, "car")
	require.NoError(t, err)

	assert.Equal(t, "car", idx.Class())
	assert.Equal(t, 2, idx.Positives(), "difficult and out-of-set objects are not positives")
	assert.Equal(t, 3, idx.Len())

	a, ok := idx.lookup("a")
	require.True(t, ok)
	assert.Len(t, a.boxes, 2)
	assert.Equal(t, []bool{false, true}, a.difficult)
	assert.Equal(t, []bool{false, false}, a.matched)

	c, ok := idx.lookup("c")
	require.True(t, ok, "images without annotations still get an entry")
	assert.Empty(t, c.boxes)

	_, ok = idx.lookup("z")
	assert.False(t, ok)
}

func TestClassIndexResetAndUnmatched(t *testing.T) {
	dataset := &Dataset{
		ImageIDs: []string{"a", "b"},
		Objects: map[string][]GroundTruthObject{
			"a": {
				{Class: "car", Box: box(0, 0, 10, 10)},
				{Class: "car", Box: box(50, 50, 60, 60), Difficult: true},
			},
			"b": {{Class: "car", Box: box(0, 0, 4, 4)}},
		},
	}
	idx, err := NewClassIndex(dataset, "car")
	require.NoError(t, err)

	_, err = Match(idx, []Detection{det("a", 0.9, box(0, 0, 10, 10))}, 0.5)
	require.NoError(t, err)

	missed := idx.Unmatched()
	require.Len(t, missed, 1)
	assert.Equal(t, MissedObject{ImageID: "b", Class: "car", Box: box(0, 0, 4, 4)}, missed[0])

	idx.Reset()
	assert.Len(t, idx.Unmatched(), 2)
}

func TestDatasetValidate(t *testing.T) {
	tests := []struct {
		name    string
		dataset *Dataset
		wantErr error
	}{
		{name: "nil", dataset: nil, wantErr: ErrInvalidDataset},
		{
			name:    "duplicate image",
			dataset: &Dataset{ImageIDs: []string{"a", "a"}},
			wantErr: ErrInvalidDataset,
		},
		{
			name:    "empty image id",
			dataset: &Dataset{ImageIDs: []string{""}},
			wantErr: ErrInvalidDataset,
		},
		{
			name: "inverted box",
			dataset: &Dataset{
				ImageIDs: []string{"a"},
				Objects:  map[string][]GroundTruthObject{"a": {{Class: "x", Box: box(5, 0, 1, 1)}}},
			},
		},
		{
			name:    "valid",
			dataset: singleObjectDataset(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dataset.Validate()
			switch {
			case tt.name == "valid":
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			default:
				assert.Error(t, err)
			}
		})
	}
}
