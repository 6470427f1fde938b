package store

import (
	"math"
	"testing"

	"github.com/fibs-geotag/mapsync/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ids ...int) *Store {
	t.Helper()
	s := New()
	for _, id := range ids {
		require.NoError(t, s.Add(NewRecord(id)))
	}
	return s
}

func TestStore_AddAndLookup(t *testing.T) {
	s := newStore(t, 5, 7, 9)

	assert.Equal(t, 3, s.Size())
	assert.Equal(t, []int{5, 7, 9}, s.IDs())

	for i, id := range []int{5, 7, 9} {
		byIndex, ok := s.Get(i)
		require.True(t, ok)
		byID, ok := s.GetByID(id)
		require.True(t, ok)
		assert.Same(t, byIndex, byID)
		assert.Equal(t, i, s.IndexOf(byID))
	}

	_, ok := s.Get(3)
	assert.False(t, ok)
	_, ok = s.Get(-1)
	assert.False(t, ok)
	_, ok = s.GetByID(42)
	assert.False(t, ok)
	assert.Equal(t, -1, s.IndexOf(NewRecord(42)))
	assert.Equal(t, -1, s.IndexOf(nil))
}

func TestStore_DuplicateID(t *testing.T) {
	s := newStore(t, 1)
	err := s.Add(NewRecord(1))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Size())
}

func TestStore_NextPrevious(t *testing.T) {
	s := newStore(t, 5, 7, 9)
	seven, _ := s.GetByID(7)

	next, err := s.Next(seven)
	require.NoError(t, err)
	assert.Equal(t, 9, next.ID)

	next, err = s.Next(next)
	require.NoError(t, err)
	assert.Equal(t, 5, next.ID)

	prev, err := s.Previous(next)
	require.NoError(t, err)
	assert.Equal(t, 9, prev.ID)

	prev, err = s.Previous(seven)
	require.NoError(t, err)
	assert.Equal(t, 5, prev.ID)
}

func TestStore_NextCycles(t *testing.T) {
	s := newStore(t, 3, 1, 4, 1000, 5)
	start, _ := s.Get(2)

	cur := start
	for i, n := 0, s.Size(); i < n; i++ {
		var err error
		cur, err = s.Next(cur)
		require.NoError(t, err)
	}
	assert.Same(t, start, cur)

	for i, n := 0, s.Size(); i < n; i++ {
		var err error
		cur, err = s.Previous(cur)
		require.NoError(t, err)
	}
	assert.Same(t, start, cur)
}

func TestStore_SingleRecordNavigatesToItself(t *testing.T) {
	s := newStore(t, 12)
	only, _ := s.Get(0)

	next, err := s.Next(only)
	require.NoError(t, err)
	assert.Same(t, only, next)

	prev, err := s.Previous(only)
	require.NoError(t, err)
	assert.Same(t, only, prev)
}

func TestStore_NavigateWithoutActive(t *testing.T) {
	s := newStore(t, 5, 7, 9)

	next, err := s.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, next.ID)

	prev, err := s.Previous(nil)
	require.NoError(t, err)
	assert.Equal(t, 9, prev.ID)
}

func TestStore_Empty(t *testing.T) {
	s := New()
	_, err := s.Next(nil)
	assert.ErrorIs(t, err, ErrEmptyStore)
	_, err = s.Previous(nil)
	assert.ErrorIs(t, err, ErrEmptyStore)
}

func TestStore_Remove(t *testing.T) {
	s := newStore(t, 5, 7, 9)

	rec, ok := s.Remove(7)
	require.True(t, ok)
	assert.Equal(t, 7, rec.ID)
	assert.Equal(t, []int{5, 9}, s.IDs())
	_, ok = s.GetByID(7)
	assert.False(t, ok)

	_, ok = s.Remove(7)
	assert.False(t, ok)

	// the ID can be reused once removed
	require.NoError(t, s.Add(NewRecord(7)))
	assert.Equal(t, []int{5, 9, 7}, s.IDs())
}

func TestImageRecord_Apply(t *testing.T) {
	rec := NewRecord(3)
	assert.False(t, rec.HasDirection())
	assert.True(t, math.IsNaN(rec.Latitude))

	rec.Apply(core.ImageInfo{ID: 3, Name: "a.jpg", Width: 640, Height: 480, Latitude: 51.5, Longitude: -0.1, Direction: 45})
	assert.Equal(t, "a.jpg", rec.Filename)
	assert.True(t, rec.HasThumbnail)
	assert.True(t, rec.HasDirection())
	assert.Equal(t, core.LatLng{Lat: 51.5, Lng: -0.1}, rec.Location())

	rec.Apply(core.ImageInfo{ID: 3, Name: "b.jpg", Width: 640, Latitude: 1, Longitude: 2, Direction: math.NaN()})
	assert.False(t, rec.HasThumbnail)
	assert.False(t, rec.HasDirection())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unpositioned", Unpositioned.String())
	assert.Equal(t, "positioned", Positioned.String())
	assert.Equal(t, "dragging", Dragging.String())
}
