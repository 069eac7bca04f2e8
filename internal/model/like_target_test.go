package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLikeTarget(t *testing.T) {
	target, err := NewLikeTarget(LikeComment, "64b7f0c2e1d3a4b5c6d7e8f9")
	require.NoError(t, err)
	assert.Equal(t, LikeComment, target.Kind())
	assert.Equal(t, Comments, target.Kind().Collection())
	assert.Len(t, target.Filter(), 2)

	_, err = NewLikeTarget("playlist", "64b7f0c2e1d3a4b5c6d7e8f9")
	assert.Error(t, err)
}

func TestIndexes_CoverUniqueRelations(t *testing.T) {
	idx := Indexes()
	for _, coll := range []string{Users, Likes, Subscriptions} {
		unique := false
		for _, i := range idx[coll] {
			unique = unique || i.Unique
		}
		assert.True(t, unique, coll)
	}
}
