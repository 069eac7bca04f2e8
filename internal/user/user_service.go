package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"gotube/internal/cascade"
	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/store"
	"gotube/internal/view"
)

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *common.Upload
	CoverImage *common.Upload
}

type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User store.Document `json:"user"`
	common.TokenPair
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (store.Document, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*common.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (store.Document, error)
	UpdateAccount(ctx context.Context, userID, fullName, email string) (store.Document, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateAvatar(ctx context.Context, userID string, upload *common.Upload) (store.Document, error)
	UpdateCoverImage(ctx context.Context, userID string, upload *common.Upload) (store.Document, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (store.Document, error)
	WatchHistory(ctx context.Context, userID string) ([]any, error)
}

type userService struct {
	userRepo UserRepository
	composer *view.Composer
	objects  common.ObjectStorage
	tokens   *common.TokenManager
	cascade  *cascade.Coordinator
	logger   *zap.Logger
}

func NewUserService(userRepo UserRepository, composer *view.Composer, objects common.ObjectStorage, tokens *common.TokenManager, coord *cascade.Coordinator, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		composer: composer,
		objects:  objects,
		tokens:   tokens,
		cascade:  coord,
		logger:   logger,
	}
}

// sanitize strips credentials before a user document leaves the service.
func sanitize(user store.Document) store.Document {
	out := user.Clone()
	delete(out, model.FieldPassword)
	delete(out, model.FieldRefreshToken)
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (store.Document, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	in.Username = common.NormalizeUsername(in.Username)
	if err := common.RequireFields(map[string]string{
		"fullName": in.FullName,
		"email":    in.Email,
		"username": in.Username,
		"password": in.Password,
	}); err != nil {
		return nil, err
	}
	if err := common.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := common.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return nil, common.ConflictError("user with email or username already exists")
	case !errors.Is(err, store.ErrNotFound):
		return nil, common.StorageError("failed to check existing users", err)
	}

	if in.Avatar == nil {
		return nil, common.ValidationError("avatar file is required")
	}
	if in.Avatar.FileType() != common.MediaFileTypeImage {
		return nil, common.ValidationError("avatar must be an image")
	}
	if in.CoverImage != nil && in.CoverImage.FileType() != common.MediaFileTypeImage {
		return nil, common.ValidationError("cover image must be an image")
	}

	hashed, err := common.HashPassword(in.Password)
	if err != nil {
		return nil, common.StorageError("failed to hash password", err)
	}

	avatar, err := s.objects.Upload(ctx, in.Avatar)
	if err != nil {
		return nil, common.StorageError("failed to upload avatar", err)
	}
	uploaded := []*common.StoredObject{avatar}
	doc := store.Document{
		model.FieldUsername:     in.Username,
		model.FieldEmail:        in.Email,
		model.FieldFullName:     in.FullName,
		model.FieldPassword:     hashed,
		model.FieldAvatar:       model.MediaRef(avatar.URL, avatar.ID),
		model.FieldCoverImage:   model.MediaRef("", ""),
		model.FieldWatchHistory: []any{},
	}
	if in.CoverImage != nil {
		cover, err := s.objects.Upload(ctx, in.CoverImage)
		if err != nil {
			s.discard(ctx, uploaded...)
			return nil, common.StorageError("failed to upload cover image", err)
		}
		uploaded = append(uploaded, cover)
		doc[model.FieldCoverImage] = model.MediaRef(cover.URL, cover.ID)
	}

	user, err := s.userRepo.Create(ctx, doc)
	if err != nil {
		s.discard(ctx, uploaded...)
		if errors.Is(err, store.ErrDuplicate) {
			return nil, common.ConflictError("user with email or username already exists")
		}
		return nil, common.StorageError("failed to register user", err)
	}
	s.logger.Info("user registered", zap.String("userId", user.ID()), zap.String("username", in.Username))
	return sanitize(user), nil
}

func (s *userService) discard(ctx context.Context, objects ...*common.StoredObject) {
	for _, o := range objects {
		if err := s.objects.Delete(ctx, o.ID); err != nil {
			s.logger.Warn("failed to discard upload", zap.String("publicId", o.ID), zap.Error(err))
		}
	}
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	username, email := common.NormalizeUsername(in.Username), normalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, common.ValidationError("username or email is required")
	}
	if in.Password == "" {
		return nil, common.ValidationError("password is required")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("user does not exist")
		}
		return nil, common.StorageError("failed to load user", err)
	}
	if err := common.CheckPassword(in.Password, user.String(model.FieldPassword)); err != nil {
		return nil, common.AuthenticationError("invalid user credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: sanitize(user), TokenPair: *pair}, nil
}

// issueTokens signs a new pair and stores the refresh token, replacing any previous one.
func (s *userService) issueTokens(ctx context.Context, user store.Document) (*common.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(user.ID(), user.String(model.FieldUsername))
	if err != nil {
		return nil, common.StorageError("failed to generate tokens", err)
	}
	if err := s.userRepo.Update(ctx, user.ID(), store.Update{
		Set: store.Document{model.FieldRefreshToken: pair.RefreshToken},
	}); err != nil {
		return nil, common.StorageError("failed to store refresh token", err)
	}
	return pair, nil
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	err := s.userRepo.Update(ctx, userID, store.Update{Set: store.Document{model.FieldRefreshToken: ""}})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return common.StorageError("failed to log out", err)
	}
	return nil
}

// RefreshToken rotates the pair. A refresh token is accepted once: it must
// match the one stored on the user.
func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*common.TokenPair, error) {
	if refreshToken == "" {
		return nil, common.AuthenticationError("unauthorized request")
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, common.AuthenticationError("invalid refresh token")
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.AuthenticationError("invalid refresh token")
		}
		return nil, common.StorageError("failed to load user", err)
	}
	if user.String(model.FieldRefreshToken) != refreshToken {
		return nil, common.AuthenticationError("refresh token is expired or used")
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) load(ctx context.Context, userID string) (store.Document, error) {
	if !store.IsValidID(userID) {
		return nil, common.ValidationError("invalid user id")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("user not found")
		}
		return nil, common.StorageError("failed to load user", err)
	}
	return user, nil
}

func (s *userService) CurrentUser(ctx context.Context, userID string) (store.Document, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

func (s *userService) UpdateAccount(ctx context.Context, userID, fullName, email string) (store.Document, error) {
	fullName, email = strings.TrimSpace(fullName), normalizeEmail(email)
	if err := common.RequireFields(map[string]string{"fullName": fullName, "email": email}); err != nil {
		return nil, err
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, store.Document{
		model.FieldFullName: fullName,
		model.FieldEmail:    email,
	})
}

func (s *userService) update(ctx context.Context, userID string, set store.Document) (store.Document, error) {
	if err := s.userRepo.Update(ctx, userID, store.Update{Set: set}); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, common.NotFoundError("user not found")
		case errors.Is(err, store.ErrDuplicate):
			return nil, common.ConflictError("email is already in use")
		}
		return nil, common.StorageError("failed to update user", err)
	}
	return s.CurrentUser(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := common.RequireFields(map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}); err != nil {
		return err
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := common.CheckPassword(oldPassword, user.String(model.FieldPassword)); err != nil {
		return common.ValidationError("invalid old password")
	}
	if err := common.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := common.HashPassword(newPassword)
	if err != nil {
		return common.StorageError("failed to hash password", err)
	}
	if err := s.userRepo.Update(ctx, userID, store.Update{Set: store.Document{model.FieldPassword: hashed}}); err != nil {
		return common.StorageError("failed to change password", err)
	}
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, upload *common.Upload) (store.Document, error) {
	return s.replaceImage(ctx, userID, model.FieldAvatar, upload)
}

func (s *userService) UpdateCoverImage(ctx context.Context, userID string, upload *common.Upload) (store.Document, error) {
	return s.replaceImage(ctx, userID, model.FieldCoverImage, upload)
}

// replaceImage uploads the new image first; the old object is released
// through the cascade only after the user points at the new one.
func (s *userService) replaceImage(ctx context.Context, userID, field string, upload *common.Upload) (store.Document, error) {
	if upload == nil {
		return nil, common.ValidationError(field + " file is missing")
	}
	if upload.FileType() != common.MediaFileTypeImage {
		return nil, common.ValidationError(field + " must be an image")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	obj, err := s.objects.Upload(ctx, upload)
	if err != nil {
		return nil, common.StorageError("failed to upload "+field, err)
	}
	updated, err := s.update(ctx, userID, store.Document{field: model.MediaRef(obj.URL, obj.ID)})
	if err != nil {
		s.discard(ctx, obj)
		return nil, err
	}
	s.cascade.ObjectReplaced(ctx, cascade.EntityUser, userID, user.String(field+"."+model.FieldPublicID))
	return updated, nil
}

func (s *userService) ChannelProfile(ctx context.Context, username, viewerID string) (store.Document, error) {
	return s.composer.ChannelProfile(ctx, username, viewerID)
}

func (s *userService) WatchHistory(ctx context.Context, userID string) ([]any, error) {
	return s.composer.WatchHistory(ctx, userID)
}
