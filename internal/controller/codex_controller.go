package controller

import (
	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/pkg/serverutils"
	"ai-novelforge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICodexController interface {
	RegisterRoutes(r fiber.Router)
}

type codexController struct {
	codexService service.ICodexService
}

func NewCodexController(codexService service.ICodexService) ICodexController {
	return &codexController{
		codexService: codexService,
	}
}

func (c *codexController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/novel/v1/:novelId/codex")
	h.Use(serverutils.JwtMiddleware)
	h.Post("character", c.createCharacter)
	h.Get("character", c.listCharacters)
	h.Put("character/:id", c.updateCharacter)
	h.Delete("character/:id", c.deleteCharacter)
	h.Post("setting", c.createSetting)
	h.Get("setting", c.listSettings)
	h.Put("setting/:id", c.updateSetting)
	h.Delete("setting/:id", c.deleteSetting)
}

func (c *codexController) createCharacter(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	var req dto.CreateCharacterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codexService.CreateCharacter(ctx.Context(), userId, novelId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create character", res))
}

func (c *codexController) listCharacters(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	res, err := c.codexService.ListCharacters(ctx.Context(), userId, novelId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list characters", res))
}

func (c *codexController) updateCharacter(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateCharacterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codexService.UpdateCharacter(ctx.Context(), userId, novelId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Character not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update character", res))
}

func (c *codexController) deleteCharacter(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.codexService.DeleteCharacter(ctx.Context(), userId, novelId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete character", nil))
}

func (c *codexController) createSetting(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	var req dto.CreateWorldSettingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codexService.CreateSetting(ctx.Context(), userId, novelId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create setting", res))
}

func (c *codexController) listSettings(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	res, err := c.codexService.ListSettings(ctx.Context(), userId, novelId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list settings", res))
}

func (c *codexController) updateSetting(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateWorldSettingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.codexService.UpdateSetting(ctx.Context(), userId, novelId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Setting not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update setting", res))
}

func (c *codexController) deleteSetting(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.codexService.DeleteSetting(ctx.Context(), userId, novelId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete setting", nil))
}
