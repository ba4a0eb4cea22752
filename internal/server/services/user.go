// Package services contains server-side business logic. This file implements
// UserService, which registers accounts, checks credentials, issues bearer
// tokens and resolves the identity behind a token.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
	"github.com/dmitrijs2005/skillkeeper/internal/server/auth"
	"github.com/dmitrijs2005/skillkeeper/internal/server/config"
	"github.com/dmitrijs2005/skillkeeper/internal/server/models"
	"github.com/dmitrijs2005/skillkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/skillkeeper/internal/server/validation"
)

const (
	invalidCredentialsMessage = "invalid username/password"
	unauthorizedMessage       = "Unauthorized"
	loggedOutMessage          = "User logged out"
)

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a bearer token
// - ResolveIdentity: map a token back to the account it was issued to
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	validator     PayloadValidator
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
	// dummyDigest is compared against when the email is unknown so that
	// both failed-login paths cost one bcrypt comparison.
	dummyDigest string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, v PayloadValidator, l logging.Logger, cfg *config.Config) (*UserService, error) {
	filler, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy password: %w", err)
	}
	dummy, err := auth.HashPassword(filler, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &UserService{
		db:            db,
		repomanager:   m,
		validator:     v,
		logger:        l.With("module", "users"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		bcryptCost:    cfg.BcryptCost,
		dummyDigest:   dummy,
	}, nil
}

// Register validates the payload and creates the account. A duplicate email
// is reported by storage and surfaces as a storage failure.
func (s *UserService) Register(ctx context.Context, payload []byte) (*AddedResult, error) {
	var in models.RegisterInput
	if err := s.validator.Validate(validation.UserRegister, payload, &in); err != nil {
		return nil, err
	}

	digest, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		logFailure(ctx, s.logger, "hash password", err)
		return nil, asAppError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Password:  digest,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Dev:       in.Dev,
	}
	if _, err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		logFailure(ctx, s.logger, "register user", err)
		return nil, asAppError(err)
	}

	s.logger.Info(ctx, "user registered", "aws_email", in.Email)
	return &AddedResult{Added: 1}, nil
}

// Login checks the credentials and returns a bearer token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, payload []byte) (*LoginResult, error) {
	var in models.LoginInput
	if err := s.validator.Validate(validation.UserLogin, payload, &in); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = auth.ComparePassword(s.dummyDigest, in.Password)
			return nil, apperr.Request(invalidCredentialsMessage)
		}
		logFailure(ctx, s.logger, "login lookup", err)
		return nil, asAppError(err)
	}

	if err := auth.ComparePassword(user.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperr.Request(invalidCredentialsMessage)
		}
		logFailure(ctx, s.logger, "login compare", err)
		return nil, asAppError(err)
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.tokenValidity)
	if err != nil {
		logFailure(ctx, s.logger, "issue token", err)
		return nil, asAppError(err)
	}

	return &LoginResult{BearerToken: common.BearerScheme + " " + token}, nil
}

// ResolveIdentity verifies the token and reloads the account it names.
// Bad or expired tokens and deleted accounts yield an unauthorized error.
func (s *UserService) ResolveIdentity(ctx context.Context, token string) (*models.UserView, error) {
	email, err := auth.GetEmailFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "err", err)
		return nil, apperr.Unauthorized(unauthorizedMessage)
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.Unauthorized(unauthorizedMessage)
		}
		logFailure(ctx, s.logger, "resolve identity", err)
		return nil, asAppError(err)
	}

	return user.View(), nil
}

// CurrentUser returns the identity attached to the request.
func (s *UserService) CurrentUser(identity *models.UserView) (*models.UserView, error) {
	if identity == nil {
		return nil, apperr.Unauthorized(unauthorizedMessage)
	}
	return identity, nil
}

// Logout acknowledges the logout. Tokens are stateless and stay valid until
// they expire.
func (s *UserService) Logout(identity *models.UserView) (*MessageResult, error) {
	if identity == nil {
		return nil, apperr.Unauthorized(unauthorizedMessage)
	}
	return &MessageResult{Message: loggedOutMessage}, nil
}
