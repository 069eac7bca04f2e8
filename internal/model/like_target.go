package model

import (
	"fmt"

	"gotube/internal/store"
)

type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

// Collection is where targets of this kind live.
func (k LikeKind) Collection() string {
	switch k {
	case LikeVideo:
		return Videos
	case LikeComment:
		return Comments
	case LikeTweet:
		return Tweets
	}
	return ""
}

// LikeTarget is exactly one of video, comment or tweet. The zero value is invalid;
// use NewLikeTarget.
type LikeTarget struct {
	kind LikeKind
	id   string
}

func NewLikeTarget(kind LikeKind, id string) (LikeTarget, error) {
	if kind.Collection() == "" {
		return LikeTarget{}, fmt.Errorf("unknown like target kind %q", kind)
	}
	return LikeTarget{kind: kind, id: id}, nil
}

func (t LikeTarget) Kind() LikeKind { return t.kind }
func (t LikeTarget) ID() string     { return t.id }

// Filter selects the likes pointing at this target.
func (t LikeTarget) Filter() store.Filter {
	return store.Where(
		store.Eq(FieldTargetKind, string(t.kind)),
		store.EqID(FieldTarget, t.id),
	)
}
