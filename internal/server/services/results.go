package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
)

// PayloadValidator checks a raw request body against a named schema and
// decodes it into out.
type PayloadValidator interface {
	Validate(schema string, payload []byte, out any) error
}

type AddedResult struct {
	Added int64 `json:"added"`
}

type UpdatedResult struct {
	Updated int64 `json:"updated"`
}

type DeletedResult struct {
	Deleted int64 `json:"deleted"`
}

type LoginResult struct {
	BearerToken string `json:"bearerToken"`
}

type MessageResult struct {
	Message string `json:"message"`
}

// asAppError leaves classified errors untouched and marks everything else
// as a storage failure.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(err)
}

// logFailure records failures whose detail is hidden from the client.
func logFailure(ctx context.Context, l logging.Logger, op string, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindStorage, apperr.KindUnclassified:
		l.Error(ctx, op+" failed", "err", err)
	}
}
