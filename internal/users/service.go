package users

import (
	"context"
	"strings"

	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

// Service keeps the local user directory in sync with the identity provider
// and serves lookups for realtime payload enrichment and e-mail routing.
type Service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService wires the directory service.
func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Sync records the identity seen on a validated token. Called from the auth
// boundary; failures are surfaced so callers can decide whether to proceed.
func (s *Service) Sync(ctx context.Context, dto UpsertUserDTO) (*UserDTO, error) {
	if strings.TrimSpace(dto.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.Upsert(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting user")
	}
	return FromModel(user), nil
}

// Get returns the directory entry for the subject, or NOT_FOUND.
func (s *Service) Get(ctx context.Context, id string) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return FromModel(user), nil
}

// GetMany returns directory entries keyed by subject. Unknown subjects are
// simply absent from the result.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]*UserDTO, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading users")
	}
	result := make(map[string]*UserDTO, len(rows))
	for i := range rows {
		result[rows[i].ID] = FromModel(&rows[i])
	}
	return result, nil
}

// ResolveByEmails maps e-mail addresses to directory entries. Addresses are
// trimmed and compared case-insensitively; unknown addresses are absent from
// the result.
func (s *Service) ResolveByEmails(ctx context.Context, emails []string) (map[string]*UserDTO, error) {
	normalized := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		normalized = append(normalized, email)
	}
	if len(normalized) == 0 {
		return map[string]*UserDTO{}, nil
	}

	rows, err := s.repo.FindByEmails(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving users by e-mail")
	}
	result := make(map[string]*UserDTO, len(rows))
	for i := range rows {
		result[strings.ToLower(rows[i].Email)] = FromModel(&rows[i])
	}
	return result, nil
}
