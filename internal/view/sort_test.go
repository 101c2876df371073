package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tokenscope/internal/model"
)

func TestSortController_Toggle(t *testing.T) {
	s := NewSortController()
	require.Nil(t, s.Current())

	var dirs []model.SortDirection
	for i := 0; i < 3; i++ {
		sc, err := s.Request(model.SortPrice)
		require.NoError(t, err)
		assert.Equal(t, model.SortPrice, sc.Key)
		dirs = append(dirs, sc.Direction)
	}
	assert.Equal(t, []model.SortDirection{model.Asc, model.Desc, model.Asc}, dirs)
}

func TestSortController_NewKeyResetsToAsc(t *testing.T) {
	s := NewSortController()

	sc, err := s.Request(model.SortPrice)
	require.NoError(t, err)
	assert.Equal(t, model.Asc, sc.Direction)

	sc, err = s.Request(model.SortVolume24h)
	require.NoError(t, err)
	assert.Equal(t, model.SortConfig{Key: model.SortVolume24h, Direction: model.Asc}, sc)

	sc, err = s.Request(model.SortPrice)
	require.NoError(t, err)
	assert.Equal(t, model.SortConfig{Key: model.SortPrice, Direction: model.Asc}, sc)
}

func TestSortController_UnknownKey(t *testing.T) {
	s := NewSortController()
	_, err := s.Request(model.SortPrice)
	require.NoError(t, err)

	_, err = s.Request("bogus")
	require.ErrorIs(t, err, ErrUnknownSortKey)

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, model.SortConfig{Key: model.SortPrice, Direction: model.Asc}, *cur)
}

func TestSortController_CurrentIsCopy(t *testing.T) {
	s := NewSortController()
	_, err := s.Request(model.SortName)
	require.NoError(t, err)

	cur := s.Current()
	cur.Direction = model.Desc

	assert.Equal(t, model.Asc, s.Current().Direction)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		current *model.SortConfig
		key     model.SortKey
		want    model.SortConfig
	}{
		{"unsorted", nil, model.SortPrice, model.SortConfig{Key: model.SortPrice, Direction: model.Asc}},
		{"same key asc", &model.SortConfig{Key: model.SortPrice, Direction: model.Asc}, model.SortPrice, model.SortConfig{Key: model.SortPrice, Direction: model.Desc}},
		{"same key desc", &model.SortConfig{Key: model.SortPrice, Direction: model.Desc}, model.SortPrice, model.SortConfig{Key: model.SortPrice, Direction: model.Asc}},
		{"other key desc", &model.SortConfig{Key: model.SortName, Direction: model.Desc}, model.SortPrice, model.SortConfig{Key: model.SortPrice, Direction: model.Asc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.current, tt.key))
		})
	}
}
