// FILE: internal/service/codex_service.go
package service

import (
	"context"
	"time"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/entity"
	"ai-novelforge-be/internal/repository/specification"
	"ai-novelforge-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ICodexService manages the per-novel story bible: characters and world
// settings that feed every generation prompt.
type ICodexService interface {
	CreateCharacter(ctx context.Context, userId, novelId uuid.UUID, req *dto.CreateCharacterRequest) (*dto.CharacterResponse, error)
	UpdateCharacter(ctx context.Context, userId, novelId uuid.UUID, req *dto.UpdateCharacterRequest) (*dto.CharacterResponse, error)
	DeleteCharacter(ctx context.Context, userId, novelId, id uuid.UUID) error
	ListCharacters(ctx context.Context, userId, novelId uuid.UUID) ([]*dto.CharacterResponse, error)

	CreateSetting(ctx context.Context, userId, novelId uuid.UUID, req *dto.CreateWorldSettingRequest) (*dto.WorldSettingResponse, error)
	UpdateSetting(ctx context.Context, userId, novelId uuid.UUID, req *dto.UpdateWorldSettingRequest) (*dto.WorldSettingResponse, error)
	DeleteSetting(ctx context.Context, userId, novelId, id uuid.UUID) error
	ListSettings(ctx context.Context, userId, novelId uuid.UUID) ([]*dto.WorldSettingResponse, error)
}

type codexService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCodexService(uowFactory unitofwork.RepositoryFactory) ICodexService {
	return &codexService{
		uowFactory: uowFactory,
	}
}

// ownedNovel verifies the novel exists and belongs to the user.
func (c *codexService) ownedNovel(ctx context.Context, uow unitofwork.UnitOfWork, userId, novelId uuid.UUID) (bool, error) {
	novel, err := uow.NovelRepository().FindOne(ctx,
		specification.ByID{ID: novelId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return false, err
	}
	return novel != nil, nil
}

func characterResponse(e *entity.Character) *dto.CharacterResponse {
	return &dto.CharacterResponse{
		Id:          e.Id,
		NovelId:     e.NovelId,
		Name:        e.Name,
		Role:        e.Role,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func settingResponse(e *entity.WorldSetting) *dto.WorldSettingResponse {
	return &dto.WorldSettingResponse{
		Id:          e.Id,
		NovelId:     e.NovelId,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (c *codexService) CreateCharacter(ctx context.Context, userId, novelId uuid.UUID, req *dto.CreateCharacterRequest) (*dto.CharacterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	character := entity.Character{
		Id:          uuid.New(),
		NovelId:     novelId,
		Name:        req.Name,
		Role:        req.Role,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := uow.CharacterRepository().Create(ctx, &character); err != nil {
		return nil, err
	}
	return characterResponse(&character), nil
}

func (c *codexService) UpdateCharacter(ctx context.Context, userId, novelId uuid.UUID, req *dto.UpdateCharacterRequest) (*dto.CharacterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	character, err := uow.CharacterRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, nil
	}

	now := time.Now()
	character.Name = req.Name
	character.Role = req.Role
	character.Description = req.Description
	character.UpdatedAt = &now

	if err := uow.CharacterRepository().Update(ctx, character); err != nil {
		return nil, err
	}
	return characterResponse(character), nil
}

func (c *codexService) DeleteCharacter(ctx context.Context, userId, novelId, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return err
	}

	character, err := uow.CharacterRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return err
	}
	if character == nil {
		return nil
	}
	return uow.CharacterRepository().Delete(ctx, id)
}

func (c *codexService) ListCharacters(ctx context.Context, userId, novelId uuid.UUID) ([]*dto.CharacterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	characters, err := uow.CharacterRepository().FindAll(ctx,
		specification.ByNovelID{NovelID: novelId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.CharacterResponse, len(characters))
	for i, character := range characters {
		response[i] = characterResponse(character)
	}
	return response, nil
}

func (c *codexService) CreateSetting(ctx context.Context, userId, novelId uuid.UUID, req *dto.CreateWorldSettingRequest) (*dto.WorldSettingResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	setting := entity.WorldSetting{
		Id:          uuid.New(),
		NovelId:     novelId,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := uow.WorldSettingRepository().Create(ctx, &setting); err != nil {
		return nil, err
	}
	return settingResponse(&setting), nil
}

func (c *codexService) UpdateSetting(ctx context.Context, userId, novelId uuid.UUID, req *dto.UpdateWorldSettingRequest) (*dto.WorldSettingResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	setting, err := uow.WorldSettingRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}

	now := time.Now()
	setting.Name = req.Name
	setting.Description = req.Description
	setting.UpdatedAt = &now

	if err := uow.WorldSettingRepository().Update(ctx, setting); err != nil {
		return nil, err
	}
	return settingResponse(setting), nil
}

func (c *codexService) DeleteSetting(ctx context.Context, userId, novelId, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return err
	}

	setting, err := uow.WorldSettingRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByNovelID{NovelID: novelId},
	)
	if err != nil {
		return err
	}
	if setting == nil {
		return nil
	}
	return uow.WorldSettingRepository().Delete(ctx, id)
}

func (c *codexService) ListSettings(ctx context.Context, userId, novelId uuid.UUID) ([]*dto.WorldSettingResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	owned, err := c.ownedNovel(ctx, uow, userId, novelId)
	if err != nil || !owned {
		return nil, err
	}

	settings, err := uow.WorldSettingRepository().FindAll(ctx,
		specification.ByNovelID{NovelID: novelId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.WorldSettingResponse, len(settings))
	for i, setting := range settings {
		response[i] = settingResponse(setting)
	}
	return response, nil
}
