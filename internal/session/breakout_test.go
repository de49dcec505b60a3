package session

import (
	"testing"

	"virtual_classroom_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoAssignGroupsInProgressOnly(t *testing.T) {
	cohort := []model.Student{
		{Name: "Jordan Michaels", Status: model.StatusInProgress},
		{Name: "Casey Nguyen", Status: model.StatusInProgress},
		{Name: "Alex Carter", Status: model.StatusCompleted},
		{Name: "Morgan Lee", Status: model.StatusMakeupRequired},
	}

	a := AutoAssign(cohort)
	require.NotNil(t, a)
	assert.Equal(t, Assignment{"Room 1": {"Jordan Michaels", "Casey Nguyen"}}, a)
}

func TestAutoAssignEmptyCohort(t *testing.T) {
	assert.Nil(t, AutoAssign(nil))
	assert.Nil(t, AutoAssign([]model.Student{{Name: "Alex", Status: model.StatusCompleted}}))
}

func TestRoomForExcludesSelf(t *testing.T) {
	a := Assignment{
		"Room 1": {"Jordan Michaels", "Casey Nguyen", "Riley Okafor"},
		"Room 2": {"Morgan Lee"},
	}

	room, peers, ok := a.RoomFor("Casey Nguyen")
	require.True(t, ok)
	assert.Equal(t, "Room 1", room)
	assert.Equal(t, []string{"Jordan Michaels", "Riley Okafor"}, peers)

	room, peers, ok = a.RoomFor("Morgan Lee")
	require.True(t, ok)
	assert.Equal(t, "Room 2", room)
	assert.Empty(t, peers)
}

func TestRoomForAbsentName(t *testing.T) {
	a := Assignment{"Room 1": {"Jordan Michaels"}}

	_, _, ok := a.RoomFor("Casey Nguyen")
	assert.False(t, ok)
}
