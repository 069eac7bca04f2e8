// Package model names the collections and fields of the entity store.
package model

import (
	"context"
	"fmt"

	"gotube/internal/store"
)

const (
	Users         = "users"
	Videos        = "videos"
	Likes         = "likes"
	Subscriptions = "subscriptions"
	Playlists     = "playlists"
	Tweets        = "tweets"
	Comments      = "comments"
)

// Collections lists every collection a pipeline may read or join.
func Collections() []string {
	return []string{Users, Videos, Likes, Subscriptions, Playlists, Tweets, Comments}
}

const (
	FieldID        = store.FieldID
	FieldCreatedAt = store.FieldCreatedAt
	FieldUpdatedAt = store.FieldUpdatedAt

	FieldOwner = "owner"

	// users
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldFullName     = "fullName"
	FieldPassword     = "password"
	FieldAvatar       = "avatar"
	FieldCoverImage   = "coverImage"
	FieldRefreshToken = "refreshToken"
	FieldWatchHistory = "watchHistory"

	// videos
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldVideoFile   = "videoFile"
	FieldThumbnail   = "thumbnail"
	FieldDuration    = "duration"
	FieldViews       = "views"
	FieldIsPublic    = "isPublic"

	// likes
	FieldLikedBy    = "likedBy"
	FieldTargetKind = "targetKind"
	FieldTarget     = "target"

	// subscriptions
	FieldSubscriber = "subscriber"
	FieldChannel    = "channel"

	// playlists
	FieldName   = "name"
	FieldVideos = "videos"

	// tweets, comments
	FieldContent = "content"
	FieldVideo   = "video"

	// media object sub-fields
	FieldURL      = "url"
	FieldPublicID = "publicId"
)

// Indexes declares the unique and text indexes every store must carry.
// The unique ones back the toggle engine when two toggles race.
func Indexes() map[string][]store.Index {
	return map[string][]store.Index{
		Users: {
			{Name: "uniq_username", Fields: []string{FieldUsername}, Unique: true},
			{Name: "uniq_email", Fields: []string{FieldEmail}, Unique: true},
		},
		Videos: {
			{Name: "text_title_description", Fields: []string{FieldTitle, FieldDescription}, Text: true},
			{Name: "owner", Fields: []string{FieldOwner}},
		},
		Likes: {
			{Name: "uniq_like", Fields: []string{FieldLikedBy, FieldTargetKind, FieldTarget}, Unique: true},
			{Name: "target", Fields: []string{FieldTargetKind, FieldTarget}},
		},
		Subscriptions: {
			{Name: "uniq_subscription", Fields: []string{FieldSubscriber, FieldChannel}, Unique: true},
			{Name: "channel", Fields: []string{FieldChannel}},
		},
		Playlists: {
			{Name: "owner", Fields: []string{FieldOwner}},
			{Name: "videos", Fields: []string{FieldVideos}},
		},
		Tweets: {
			{Name: "owner", Fields: []string{FieldOwner}},
		},
		Comments: {
			{Name: "video", Fields: []string{FieldVideo}},
		},
	}
}

// MediaRef is the stored shape of an uploaded object reference.
func MediaRef(url, publicID string) store.Document {
	return store.Document{FieldURL: url, FieldPublicID: publicID}
}

// EnsureIndexes creates every declared index on s.
func EnsureIndexes(ctx context.Context, s store.Store) error {
	for _, coll := range Collections() {
		idx := Indexes()[coll]
		if len(idx) == 0 {
			continue
		}
		if err := s.EnsureIndexes(ctx, coll, idx); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}
