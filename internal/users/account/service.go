// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"

	"github.com/taibuivan/geodrop/internal/platform/dberr"
)

// # Service Layer

// Service is the user registry as seen by the credential flows.
//
// It never checks credentials itself; callers only reach it once a token has
// been verified for the id they pass.
type Service struct {
	repository UserRepository
	logger     *slog.Logger
}

// NewService constructs a new [Service] over a repository backend.
func NewService(repository UserRepository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

/*
Create registers a user, or merges the attributes into an existing record.

Parameters:
  - context: context.Context
  - id: string
  - attributes: map[string]string (profile fields, "id" excluded)

Returns:
  - *User: The written user
  - error: apperr.ServiceUnavailable on storage failure
*/
func (service *Service) Create(context context.Context, id string, attributes map[string]string) (*User, error) {
	user := newUser(id, attributes)

	if err := service.repository.Upsert(context, user); err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	service.logger.InfoContext(context, "user_registered", slog.String("user_id", id))
	return user, nil
}

// Exists reports whether the user is registered.
func (service *Service) Exists(context context.Context, id string) (bool, error) {
	exists, err := service.repository.Exists(context, id)
	if err != nil {
		return false, dberr.Wrap(err, "User")
	}
	return exists, nil
}

/*
Get loads a registered user.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: The stored user
  - error: apperr.NotFound("User") or apperr.ServiceUnavailable
*/
func (service *Service) Get(context context.Context, id string) (*User, error) {
	user, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}
