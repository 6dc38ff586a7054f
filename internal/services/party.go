package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/wemedia/catalog-backend/internal/data/repos"
	"github.com/wemedia/catalog-backend/internal/domain"
	"github.com/wemedia/catalog-backend/internal/platform/apierr"
	"github.com/wemedia/catalog-backend/internal/platform/dbctx"
	"github.com/wemedia/catalog-backend/internal/platform/logger"
)

type PartyService interface {
	Create(ctx context.Context, code, name string, altNames []string) (*domain.Party, error)

	// FindDuplicate reports an existing party whose exact name or any
	// alternate name matches, case-insensitively. The two checks are
	// independent OR'd conditions.
	FindDuplicate(ctx context.Context, name string) (*domain.Party, error)
}

type partyService struct {
	log       *logger.Logger
	partyRepo repos.PartyRepo
}

func NewPartyService(baseLog *logger.Logger, partyRepo repos.PartyRepo) PartyService {
	return &partyService{
		log:       baseLog.With("service", "PartyService"),
		partyRepo: partyRepo,
	}
}

func (s *partyService) Create(ctx context.Context, code, name string, altNames []string) (*domain.Party, error) {
	if code == "" || name == "" {
		return nil, apierr.New(400, apierr.CodeInvalidFilter, fmt.Errorf("party needs code and name"))
	}
	existing, err := s.FindDuplicate(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierr.New(409, "duplicate_party",
			fmt.Errorf("party name %q already taken by %s", name, existing.Code))
	}

	alt, err := json.Marshal(altNames)
	if err != nil {
		return nil, fmt.Errorf("encode alt names: %w", err)
	}
	party := &domain.Party{
		ID:       uuid.New(),
		Code:     code,
		Name:     name,
		AltNames: alt,
	}
	if _, err := s.partyRepo.Create(dbctx.Context{Ctx: ctx}, []*domain.Party{party}); err != nil {
		return nil, fmt.Errorf("create party: %w", err)
	}
	return party, nil
}

func (s *partyService) FindDuplicate(ctx context.Context, name string) (*domain.Party, error) {
	party, err := s.partyRepo.FindDuplicate(dbctx.Context{Ctx: ctx}, name)
	if err != nil {
		return nil, fmt.Errorf("find duplicate party: %w", err)
	}
	return party, nil
}
