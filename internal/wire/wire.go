//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"gotube/internal/cascade"
	"gotube/internal/comment"
	"gotube/internal/dashboard"
	"gotube/internal/like"
	"gotube/internal/playlist"
	"gotube/internal/subscription"
	"gotube/internal/toggle"
	"gotube/internal/tweet"
	"gotube/internal/user"
	"gotube/internal/video"
	"gotube/internal/view"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideMongo,
	ProvideStore,
	ProvideObjectStorage,
	ProvideLedger,
	ProvideTokenManager,
	ProvideHealth,
)

var engineSet = wire.NewSet(
	ProvideExecutor,
	view.NewComposer,
	toggle.NewEngine,
	cascade.NewCoordinator,
	ProvideReconciler,
)

var serviceSet = wire.NewSet(
	user.NewUserRepository,
	user.NewUserService,
	video.NewVideoService,
	comment.NewCommentService,
	tweet.NewTweetService,
	like.NewLikeService,
	subscription.NewSubscriptionService,
	playlist.NewPlaylistService,
	dashboard.NewDashboardService,
)

var handlerSet = wire.NewSet(
	ProvideUserHandler,
	video.NewHandler,
	comment.NewHandler,
	tweet.NewHandler,
	like.NewHandler,
	subscription.NewHandler,
	playlist.NewHandler,
	dashboard.NewHandler,
	wire.Struct(new(Handlers), "*"),
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		infraSet,
		engineSet,
		serviceSet,
		handlerSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
