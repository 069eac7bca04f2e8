package view

import (
	"gotube/internal/access"
	"gotube/internal/model"
	"gotube/internal/pipeline"
	"gotube/internal/store"
)

// derived field names
const (
	fieldOwnerDetails              = "ownerDetails"
	fieldLikes                     = "likes"
	fieldLikesCount                = "likesCount"
	fieldIsLiked                   = "isLiked"
	fieldSubscribers               = "subscribers"
	fieldSubscribersCount          = "subscribersCount"
	fieldIsSubscribed              = "isSubscribed"
	fieldSubscribedTo              = "subscribedTo"
	fieldChannelsSubscribedToCount = "channelsSubscribedToCount"
	fieldSubscribedToSubscriber    = "subscribedToSubscriber"
	fieldSubscriber                = "subscriber"
	fieldSubscribedChannel         = "subscribedChannel"
	fieldVideosCount               = "videosCount"
	fieldLatestVideo               = "latestVideo"
	fieldLikedVideo                = "likedVideo"
	fieldTotalVideos               = "totalVideos"
	fieldTotalViews                = "totalViews"
)

var userSummaryFields = []string{
	model.FieldUsername,
	model.FieldFullName,
	model.FieldAvatar + "." + model.FieldURL,
}

var videoCardFields = []string{
	model.FieldTitle,
	model.FieldDescription,
	model.FieldThumbnail + "." + model.FieldURL,
	model.FieldVideoFile + "." + model.FieldURL,
	model.FieldDuration,
	model.FieldViews,
	model.FieldIsPublic,
	model.FieldOwner,
	model.FieldCreatedAt,
}

func with(fields []string, extra ...string) []string {
	out := make([]string, 0, len(fields)+len(extra))
	out = append(out, fields...)
	return append(out, extra...)
}

// ownerJoin attaches the owning user's public summary under as, as a single document.
func ownerJoin(as string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Users,
			LocalField:   model.FieldOwner,
			ForeignField: model.FieldID,
			As:           as,
			Pipeline:     []pipeline.Stage{pipeline.Project(userSummaryFields...)},
		}),
		pipeline.Derive(as, pipeline.First(as)),
	}
}

// likesJoin attaches likesCount and the viewer's isLiked flag.
func likesJoin(kind model.LikeKind, viewerID string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Likes,
			LocalField:   model.FieldID,
			ForeignField: model.FieldTarget,
			As:           fieldLikes,
			Where:        store.Where(store.Eq(model.FieldTargetKind, string(kind))),
		}),
		pipeline.Derive(fieldLikesCount, pipeline.Count(fieldLikes)),
		pipeline.Derive(fieldIsLiked, pipeline.ContainsID(fieldLikes+"."+model.FieldLikedBy, viewerID)),
	}
}

// subscribersJoin attaches subscribersCount and the viewer's flag (under flag)
// to user documents.
func subscribersJoin(flag, viewerID string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Subscriptions,
			LocalField:   model.FieldID,
			ForeignField: model.FieldChannel,
			As:           fieldSubscribers,
		}),
		pipeline.Derive(fieldSubscribersCount, pipeline.Count(fieldSubscribers)),
		pipeline.Derive(flag, pipeline.ContainsID(fieldSubscribers+"."+model.FieldSubscriber, viewerID)),
	}
}

func stages(groups ...[]pipeline.Stage) []pipeline.Stage {
	var out []pipeline.Stage
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func channelStatsVideos(ownerID string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Match(store.EqID(model.FieldOwner, ownerID)),
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Likes,
			LocalField:   model.FieldID,
			ForeignField: model.FieldTarget,
			As:           fieldLikes,
			Where:        store.Where(store.Eq(model.FieldTargetKind, string(model.LikeVideo))),
		}),
		pipeline.Derive(fieldLikesCount, pipeline.Count(fieldLikes)),
		pipeline.Project(model.FieldViews, fieldLikesCount),
	}
}

func channelVideos(ownerID string) []pipeline.Stage {
	return stages(
		[]pipeline.Stage{
			pipeline.Match(store.EqID(model.FieldOwner, ownerID)),
			pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		},
		likesJoin(model.LikeVideo, ""),
		[]pipeline.Stage{pipeline.Project(with(videoCardFields, fieldLikesCount)...)},
	)
}

func videoFeed(q FeedQuery, sort []pipeline.SortKey) []pipeline.Stage {
	var out []pipeline.Stage
	if q.Query != "" {
		out = append(out, pipeline.Search(q.Query))
	}
	conds := []store.Condition{access.PublicOnly()}
	if q.UserID != "" {
		conds = append(conds, store.EqID(model.FieldOwner, q.UserID))
	}
	out = append(out, pipeline.Match(conds...), pipeline.Sort(sort...))
	return stages(
		out,
		ownerJoin(fieldOwnerDetails),
		[]pipeline.Stage{pipeline.Project(with(videoCardFields, fieldOwnerDetails)...)},
	)
}

func videoDetail(videoID, viewerID string) []pipeline.Stage {
	ownerPipeline := stages(
		subscribersJoin(fieldIsSubscribed, viewerID),
		[]pipeline.Stage{pipeline.Project(with(userSummaryFields, fieldSubscribersCount, fieldIsSubscribed)...)},
	)
	return stages(
		[]pipeline.Stage{
			pipeline.Match(store.EqID(model.FieldID, videoID), access.VisibleTo(viewerID)),
			pipeline.Join(pipeline.JoinSpec{
				From:         model.Users,
				LocalField:   model.FieldOwner,
				ForeignField: model.FieldID,
				As:           model.FieldOwner,
				Pipeline:     ownerPipeline,
			}),
			pipeline.Derive(model.FieldOwner, pipeline.First(model.FieldOwner)),
		},
		likesJoin(model.LikeVideo, viewerID),
		[]pipeline.Stage{pipeline.Project(with(videoCardFields, fieldLikesCount, fieldIsLiked)...)},
	)
}

func likedVideos(viewerID string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Match(
			store.EqID(model.FieldLikedBy, viewerID),
			store.Eq(model.FieldTargetKind, string(model.LikeVideo)),
		),
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Videos,
			LocalField:   model.FieldTarget,
			ForeignField: model.FieldID,
			As:           fieldLikedVideo,
			Where:        store.Where(access.VisibleTo(viewerID)),
			Pipeline: stages(
				ownerJoin(fieldOwnerDetails),
				[]pipeline.Stage{pipeline.Project(with(videoCardFields, fieldOwnerDetails)...)},
			),
		}),
		pipeline.Unwind(fieldLikedVideo),
		pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		pipeline.Project(fieldLikedVideo, model.FieldCreatedAt),
	}
}

func channelSubscribers(channelID, viewerID string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Match(store.EqID(model.FieldChannel, channelID)),
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Users,
			LocalField:   model.FieldSubscriber,
			ForeignField: model.FieldID,
			As:           fieldSubscriber,
			Pipeline: stages(
				subscribersJoin(fieldSubscribedToSubscriber, viewerID),
				[]pipeline.Stage{pipeline.Project(with(userSummaryFields, fieldSubscribersCount, fieldSubscribedToSubscriber)...)},
			),
		}),
		pipeline.Unwind(fieldSubscriber),
		pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		pipeline.Project(fieldSubscriber),
	}
}

func subscribedChannels(subscriberID, viewerID string) []pipeline.Stage {
	channelPipeline := stages(
		[]pipeline.Stage{
			pipeline.Join(pipeline.JoinSpec{
				From:         model.Videos,
				LocalField:   model.FieldID,
				ForeignField: model.FieldOwner,
				As:           model.FieldVideos,
				Where:        store.Where(access.VisibleTo(viewerID)),
				Pipeline: []pipeline.Stage{
					pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
					pipeline.Project(videoCardFields...),
				},
			}),
			pipeline.Derive(fieldVideosCount, pipeline.Count(model.FieldVideos)),
			pipeline.Derive(fieldLatestVideo, pipeline.First(model.FieldVideos)),
		},
		subscribersJoin(fieldIsSubscribed, viewerID),
		[]pipeline.Stage{pipeline.Project(with(userSummaryFields,
			fieldVideosCount, fieldLatestVideo, fieldSubscribersCount, fieldIsSubscribed)...)},
	)
	return []pipeline.Stage{
		pipeline.Match(store.EqID(model.FieldSubscriber, subscriberID)),
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Users,
			LocalField:   model.FieldChannel,
			ForeignField: model.FieldID,
			As:           fieldSubscribedChannel,
			Pipeline:     channelPipeline,
		}),
		pipeline.Unwind(fieldSubscribedChannel),
		pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		pipeline.Project(fieldSubscribedChannel),
	}
}

func watchHistory(viewerID string) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Match(store.EqID(model.FieldID, viewerID)),
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Videos,
			LocalField:   model.FieldWatchHistory,
			ForeignField: model.FieldID,
			As:           model.FieldWatchHistory,
			Where:        store.Where(access.VisibleTo(viewerID)),
			Pipeline: stages(
				ownerJoin(model.FieldOwner),
				[]pipeline.Stage{pipeline.Project(videoCardFields...)},
			),
		}),
		pipeline.Project(model.FieldWatchHistory),
	}
}

// playlistVideos joins the videos of a playlist the viewer may see and
// folds them into totalVideos and totalViews.
func playlistVideos(viewerID string, videoPipeline []pipeline.Stage) []pipeline.Stage {
	return []pipeline.Stage{
		pipeline.Join(pipeline.JoinSpec{
			From:         model.Videos,
			LocalField:   model.FieldVideos,
			ForeignField: model.FieldID,
			As:           model.FieldVideos,
			Where:        store.Where(access.VisibleTo(viewerID)),
			Pipeline:     videoPipeline,
		}),
		pipeline.Derive(fieldTotalVideos, pipeline.Count(model.FieldVideos)),
		pipeline.Derive(fieldTotalViews, pipeline.Sum(model.FieldVideos+"."+model.FieldViews)),
	}
}

var playlistFields = []string{
	model.FieldName,
	model.FieldDescription,
	model.FieldOwner,
	fieldTotalVideos,
	fieldTotalViews,
	model.FieldCreatedAt,
	model.FieldUpdatedAt,
}

func userPlaylists(userID, viewerID string) []pipeline.Stage {
	return stages(
		[]pipeline.Stage{
			pipeline.Match(store.EqID(model.FieldOwner, userID)),
			pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		},
		playlistVideos(viewerID, []pipeline.Stage{pipeline.Project(model.FieldViews)}),
		[]pipeline.Stage{pipeline.Project(playlistFields...)},
	)
}

func playlistDetail(playlistID, viewerID string) []pipeline.Stage {
	return stages(
		[]pipeline.Stage{pipeline.Match(store.EqID(model.FieldID, playlistID))},
		playlistVideos(viewerID, []pipeline.Stage{pipeline.Project(videoCardFields...)}),
		ownerJoin(model.FieldOwner),
		[]pipeline.Stage{pipeline.Project(with(playlistFields, model.FieldVideos)...)},
	)
}

func userTweets(userID, viewerID string) []pipeline.Stage {
	return stages(
		[]pipeline.Stage{
			pipeline.Match(store.EqID(model.FieldOwner, userID)),
			pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		},
		ownerJoin(fieldOwnerDetails),
		likesJoin(model.LikeTweet, viewerID),
		[]pipeline.Stage{pipeline.Project(
			model.FieldContent, model.FieldOwner, fieldOwnerDetails,
			fieldLikesCount, fieldIsLiked, model.FieldCreatedAt, model.FieldUpdatedAt,
		)},
	)
}

func videoComments(videoID, viewerID string) []pipeline.Stage {
	return stages(
		[]pipeline.Stage{
			pipeline.Match(store.EqID(model.FieldVideo, videoID)),
			pipeline.Sort(pipeline.Desc(model.FieldCreatedAt)),
		},
		ownerJoin(fieldOwnerDetails),
		likesJoin(model.LikeComment, viewerID),
		[]pipeline.Stage{pipeline.Project(
			model.FieldContent, model.FieldVideo, model.FieldOwner, fieldOwnerDetails,
			fieldLikesCount, fieldIsLiked, model.FieldCreatedAt, model.FieldUpdatedAt,
		)},
	)
}

func channelProfile(username, viewerID string) []pipeline.Stage {
	return stages(
		[]pipeline.Stage{pipeline.Match(store.Eq(model.FieldUsername, username))},
		subscribersJoin(fieldIsSubscribed, viewerID),
		[]pipeline.Stage{
			pipeline.Join(pipeline.JoinSpec{
				From:         model.Subscriptions,
				LocalField:   model.FieldID,
				ForeignField: model.FieldSubscriber,
				As:           fieldSubscribedTo,
			}),
			pipeline.Derive(fieldChannelsSubscribedToCount, pipeline.Count(fieldSubscribedTo)),
			pipeline.Project(
				model.FieldFullName, model.FieldUsername, model.FieldEmail,
				model.FieldAvatar+"."+model.FieldURL, model.FieldCoverImage+"."+model.FieldURL,
				fieldSubscribersCount, fieldChannelsSubscribedToCount, fieldIsSubscribed,
			),
		},
	)
}
