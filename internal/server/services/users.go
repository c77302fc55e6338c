// Package services contains the business logic of the server: accounts and
// authentication (UserService) and the question/comment resources.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/dbx"
	"github.com/dmitrijs2005/qaboard/internal/server/auth"
	"github.com/dmitrijs2005/qaboard/internal/server/config"
	"github.com/dmitrijs2005/qaboard/internal/server/mailer"
	"github.com/dmitrijs2005/qaboard/internal/server/models"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/qaboard/internal/server/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgMissingCredentials = "Please provide an email and password"
	msgDuplicate          = "Duplicate field value entered"
	msgNotAuthorized      = "Not authorized to access this route"
	msgInvalidToken       = "Invalid token"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// PictureUpload is an uploaded profile picture as received from the client.
type PictureUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type UserService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	store              storage.FileStore
	mailer             mailer.Sender
	validate           *validator.Validate
	jwtSecret          []byte
	tokenValidity      time.Duration
	resetTokenValidity time.Duration
	maxUploadSize      int64
	now                func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, store storage.FileStore, mail mailer.Sender, cfg *config.Config) *UserService {
	return &UserService{
		db:                 db,
		repomanager:        m,
		store:              store,
		mailer:             mail,
		validate:           newValidator(),
		jwtSecret:          []byte(cfg.SecretKey),
		tokenValidity:      cfg.TokenValidityDuration,
		resetTokenValidity: cfg.ResetTokenValidityDuration,
		maxUploadSize:      cfg.MaxUploadSize,
		now:                time.Now,
	}
}

// Register creates a user with the "user" role and returns it with a session token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, "", err
	}

	u, err := s.createUser(ctx, in.Email, in.Password, common.RoleUser)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login checks the credentials and returns a session token. Unknown email
// and wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", common.NewError(common.ErrorValidation, msgMissingCredentials)
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.SimulatePasswordCheck(password)
			return "", common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return "", common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
	}

	return s.issueToken(u.ID)
}

// ResolveIdentity verifies a session token and loads the role of its user.
func (s *UserService) ResolveIdentity(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, common.NewError(common.ErrorUnauthorized, msgNotAuthorized)
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", common.NewError(common.ErrorUnauthorized, msgNotAuthorized), err)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return auth.Identity{}, common.NewError(common.ErrorUnauthorized, msgNotAuthorized)
		}
		return auth.Identity{}, fmt.Errorf("error searching user: %w", err)
	}

	return auth.Identity{UserID: u.ID, Role: u.Role}, nil
}

func (s *UserService) CurrentUser(ctx context.Context, id auth.Identity) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, msgNotAuthorized)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return u, nil
}

// ForgotPassword stores a hashed reset token and mails the plain one as
// resetURLBase+token. If the mail cannot be sent the token is cleared again.
func (s *UserService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	email = normalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, "There is no user with that email")
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token, hashed, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	if err := repo.SetResetToken(ctx, u.ID, hashed, s.now().Add(s.resetTokenValidity)); err != nil {
		return fmt.Errorf("error saving reset token: %w", err)
	}

	msg := mailer.Email{
		To:      []string{u.Email},
		Subject: "Password reset token",
		Body: "You are receiving this email because you (or someone else) has requested the reset of a password. " +
			"Please make a PUT request to:\n\n" + resetURLBase + token,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		if cerr := repo.ClearResetToken(ctx, u.ID); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return fmt.Errorf("%w: %w", &common.Error{Kind: common.ErrorDelivery, Msg: "Email could not be sent"}, err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password. The lookup
// and the update run in one transaction with the user row locked.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if token == "" {
		return "", common.NewError(common.ErrorValidation, msgInvalidToken)
	}
	if err := s.checkNewPassword(newPassword); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	var userID int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByResetToken(ctx, auth.HashResetToken(token), s.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorValidation, msgInvalidToken)
			}
			return fmt.Errorf("error searching reset token: %w", err)
		}

		if err := repo.UpdatePassword(ctx, u.ID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	return s.issueToken(userID)
}

// UpdatePassword changes the password of the requester after checking the
// current one, and returns a fresh session token.
func (s *UserService) UpdatePassword(ctx context.Context, id auth.Identity, current, newPassword string) (string, error) {
	if current == "" {
		return "", common.NewError(common.ErrorValidation, "Please provide the current password")
	}
	if err := s.checkNewPassword(newPassword); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)
	u, err := s.CurrentUser(ctx, id)
	if err != nil {
		return "", err
	}

	ok, err := auth.CheckPassword(u.PasswordHash, current)
	if err != nil {
		return "", fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return "", common.NewError(common.ErrorUnauthorized, "Password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return "", fmt.Errorf("error updating password: %w", err)
	}

	return s.issueToken(u.ID)
}

// allowedImageTypes lists the sniffed formats accepted as profile pictures.
// SVG is left out since it can carry script.
var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// UploadProfilePicture stores a picture for userID as photo_<id><ext> and
// records the name on the user. Content is sniffed before anything is
// written.
func (s *UserService) UploadProfilePicture(ctx context.Context, id auth.Identity, userID int64, pic *PictureUpload) (string, error) {
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.NewError(common.ErrorNotFound, "User not found!")
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if !auth.CanModify(id, u.ID) {
		return "", common.NewError(common.ErrorUnauthorized, "This user is not authorized to update the picture profile")
	}

	if pic == nil || pic.Content == nil {
		return "", common.NewError(common.ErrorValidation, "Please upload a picture")
	}

	if !strings.HasPrefix(pic.ContentType, "image") {
		return "", common.NewError(common.ErrorValidation, "Please upload an image file")
	}

	if pic.Size > s.maxUploadSize {
		return "", common.NewError(common.ErrorValidation, "Please upload an image less than %d", s.maxUploadSize)
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(pic.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading upload: %w", err)
	}
	head = head[:n]

	if _, ok := allowedImageTypes[mimetype.Detect(head).String()]; !ok {
		return "", common.NewError(common.ErrorValidation, "Please upload an image file")
	}

	name := fmt.Sprintf("photo_%d%s", u.ID, strings.ToLower(filepath.Ext(pic.Filename)))
	body := io.MultiReader(bytes.NewReader(head), pic.Content)

	if err := s.store.Save(ctx, name, body, pic.Size, pic.ContentType); err != nil {
		return "", fmt.Errorf("%w: %w", &common.Error{Kind: common.ErrorDelivery, Msg: "Problem with file upload"}, err)
	}

	if err := repo.UpdatePhoto(ctx, u.ID, name); err != nil {
		return "", fmt.Errorf("error updating photo: %w", err)
	}

	return name, nil
}

// CreateUser creates a user with an explicit role. It backs the user admin tool.
func (s *UserService) CreateUser(ctx context.Context, email, password, role string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validateStruct(s.validate, RegisterInput{Email: email, Password: password}); err != nil {
		return nil, err
	}
	if err := checkRole(role); err != nil {
		return nil, err
	}
	return s.createUser(ctx, email, password, role)
}

// SetRole changes the role of the user with the given email.
func (s *UserService) SetRole(ctx context.Context, email, role string) (*models.User, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "There is no user with that email")
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if err := repo.UpdateRole(ctx, u.ID, role); err != nil {
		return nil, fmt.Errorf("error updating role: %w", err)
	}
	u.Role = role
	return u, nil
}

func (s *UserService) createUser(ctx context.Context, email, password, role string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewError(common.ErrorValidation, msgDuplicate)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

func (s *UserService) checkNewPassword(password string) error {
	return validateStruct(s.validate, struct {
		Password string `json:"password" validate:"required,min=6"`
	}{password})
}

func (s *UserService) issueToken(userID int64) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

func checkRole(role string) error {
	if role != common.RoleUser && role != common.RoleAdmin {
		return common.NewError(common.ErrorValidation, "role must be one of: %s %s", common.RoleUser, common.RoleAdmin)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
