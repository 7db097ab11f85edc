package controller

import (
	"errors"

	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/pkg/serverutils"
	"ai-novelforge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	GenerateBatch(ctx *fiber.Ctx) error
	PlanNextAct(ctx *fiber.Ctx) error
	CheckCompliance(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	progressService   service.IProgressService
}

func NewGenerationController(
	generationService service.IGenerationService,
	progressService service.IProgressService,
) IGenerationController {
	return &generationController{
		generationService: generationService,
		progressService:   progressService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/novel/v1/:novelId/generation")
	h.Use(serverutils.JwtMiddleware)
	h.Post("batch", c.GenerateBatch)
	h.Post("plan", c.PlanNextAct)
	h.Get("compliance/:number", c.CheckCompliance)
	h.Get("progress", c.Progress)
}

func (c *generationController) GenerateBatch(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	var req dto.GenerateBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GenerateBatch(ctx.Context(), userId, novelId, &req)
	if err != nil {
		if errors.Is(err, service.ErrBatchInProgress) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Batch finished", res))
}

func (c *generationController) PlanNextAct(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	res, err := c.generationService.PlanNextAct(ctx.Context(), userId, novelId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Planning finished", res))
}

func (c *generationController) CheckCompliance(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	number, err := ctx.ParamsInt("number")
	if err != nil || number < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid chapter number")
	}

	res, err := c.generationService.CheckCompliance(ctx.Context(), userId, novelId, number)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Chapter not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Compliance checked", res))
}

func (c *generationController) Progress(ctx *fiber.Ctx) error {
	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	res, err := c.progressService.Get(ctx.Context(), novelId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}
