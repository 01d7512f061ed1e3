package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNodeId(t *testing.T) {
	id, err := ParseNodeId("B")
	assert.NoError(t, err)
	assert.Equal(t, NodeId('B'), id)
	assert.Equal(t, "B", id.String())

	_, err = ParseNodeId("")
	assert.Error(t, err)
	_, err = ParseNodeId("AB")
	assert.Error(t, err)
	_, err = ParseNodeId("a")
	assert.Error(t, err)
	_, err = ParseNodeId("1")
	assert.Error(t, err)
}

func TestParseRoster(t *testing.T) {
	r, err := ParseRoster("A,B,C")
	assert.NoError(t, err)
	assert.Equal(t, Roster{'A', 'B', 'C'}, r)

	r, err = ParseRoster("ABC")
	assert.NoError(t, err)
	assert.Equal(t, Roster{'A', 'B', 'C'}, r)
	assert.Equal(t, "A,B,C", r.String())
}

func TestRosterValidate(t *testing.T) {
	_, err := ParseRoster("")
	assert.Error(t, err)

	_, err = ParseRoster("A,A")
	assert.Error(t, err)

	_, err = ParseRoster("A,b")
	assert.Error(t, err)
}

func TestRosterRankAndPeers(t *testing.T) {
	r := Roster{'A', 'B', 'C'}
	assert.Equal(t, 0, r.RankOf('A'))
	assert.Equal(t, 2, r.RankOf('C'))
	assert.Equal(t, -1, r.RankOf('D'))
	assert.True(t, r.Contains('B'))
	assert.False(t, r.Contains('Z'))
	assert.Equal(t, []NodeId{'A', 'C'}, r.Peers('B'))
}
