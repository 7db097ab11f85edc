package controller

import (
	"ai-novelforge-be/internal/dto"
	"ai-novelforge-be/internal/pkg/serverutils"
	"ai-novelforge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChapterController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Count(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chapterController struct {
	chapterService service.IChapterService
}

func NewChapterController(chapterService service.IChapterService) IChapterController {
	return &chapterController{
		chapterService: chapterService,
	}
}

func (c *chapterController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/novel/v1/:novelId/chapter")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get("count", c.Count)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *chapterController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.chapterService.List(ctx.Context(), userId, novelId, limit, offset)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chapters", res))
}

func (c *chapterController) Count(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))

	res, err := c.chapterService.Count(ctx.Context(), userId, novelId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Novel not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success count chapters", res))
}

func (c *chapterController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.chapterService.Show(ctx.Context(), userId, novelId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Chapter not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chapter", res))
}

func (c *chapterController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chapterService.Update(ctx.Context(), userId, novelId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Chapter not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chapter", res))
}

func (c *chapterController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	novelId, _ := uuid.Parse(ctx.Params("novelId"))
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.chapterService.Delete(ctx.Context(), userId, novelId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chapter", nil))
}
