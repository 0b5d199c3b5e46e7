package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentToggleLike(t *testing.T) {
	c := &Comment{Likes: []string{}}

	assert.True(t, c.ToggleLike("u1"))
	assert.True(t, c.ToggleLike("u2"))
	assert.Equal(t, 2, c.NumberOfLikes)
	assert.True(t, c.LikedBy("u1"))

	assert.False(t, c.ToggleLike("u1"))
	assert.Equal(t, 1, c.NumberOfLikes)
	assert.False(t, c.LikedBy("u1"))
	assert.Equal(t, len(c.Likes), c.NumberOfLikes)
}

func TestCommentToggleTwiceRestoresState(t *testing.T) {
	c := &Comment{Likes: []string{"u9"}, NumberOfLikes: 1}

	c.ToggleLike("u3")
	c.ToggleLike("u3")

	assert.Equal(t, []string{"u9"}, []string(c.Likes))
	assert.Equal(t, 1, c.NumberOfLikes)
}
