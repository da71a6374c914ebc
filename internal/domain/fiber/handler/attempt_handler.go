package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prajwalmandlik2004/indx-corporate/internal/analysis"
	"github.com/prajwalmandlik2004/indx-corporate/internal/dto"
	"github.com/prajwalmandlik2004/indx-corporate/internal/middleware"
	"github.com/prajwalmandlik2004/indx-corporate/internal/model"
	"github.com/prajwalmandlik2004/indx-corporate/internal/response"
	"github.com/prajwalmandlik2004/indx-corporate/internal/usecase"
	"github.com/prajwalmandlik2004/indx-corporate/internal/util"
	"gorm.io/gorm"
)

type AttemptHandler struct {
	uc *usecase.AttemptUsecase
}

func NewAttemptHandler(uc *usecase.AttemptUsecase) *AttemptHandler {
	return &AttemptHandler{uc: uc}
}

func (h *AttemptHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/test")
	api.Post("/start", middleware.RateLimiter(5, 1*time.Minute), h.Start)
	api.Post("/submit", middleware.RateLimiter(5, 1*time.Minute), h.Submit)
	api.Get("/result/:id", h.Result)
	api.Get("/dashboard", h.Dashboard)
	api.Get("/categories", h.Categories)
}

func (h *AttemptHandler) Start(c *fiber.Ctx) error {
	var req dto.StartTestRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	attempt, questions, err := h.uc.Start(c.Context(), req.Category, req.Level)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "failed to start test",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success start test",
		Data: fiber.Map{
			"id":        attempt.ID,
			"test_name": attempt.TestName,
			"category":  attempt.Category,
			"level":     attempt.Level,
			"questions": questions,
		},
	})
}

func (h *AttemptHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTestRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	answers := make([]analysis.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = analysis.Answer{QuestionID: a.QuestionID, AnswerText: a.AnswerText}
	}

	attempt, err := h.uc.Submit(c.Context(), req.TestID, answers)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "test not found",
			}, err)
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "failed to submit test",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Test submitted successfully",
		Data:    fiber.Map{"test_id": attempt.ID, "status": attempt.Status},
	})
}

func (h *AttemptHandler) Result(c *fiber.Ctx) error {
	id := c.Params("id")
	attempt, err := h.uc.Result(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "test not found",
		}, err)
	}

	// Analysis is stored as a JSON document; re-emit it untouched so the
	// per-provider slots (including {error} variants) come through as-is.
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get test result",
		Data: fiber.Map{
			"id":        attempt.ID,
			"test_name": attempt.TestName,
			"category":  attempt.Category,
			"level":     attempt.Level,
			"status":    attempt.Status,
			"score":     attempt.Score,
			"analysis":  json.RawMessage(attempt.Analysis),
			"completed": attempt.Completed,
		},
	})
}

func (h *AttemptHandler) Dashboard(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 10)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	attempts, total, err := h.uc.Dashboard(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list tests",
		}, err)
	}

	items := make([]dto.TestAttemptDTO, len(attempts))
	for i, a := range attempts {
		items[i] = toAttemptDTO(a)
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	from := (page-1)*pageSize + 1
	to := from + len(items) - 1
	if len(items) == 0 {
		from, to = 0, 0
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get test dashboard",
		Data:    items,
		Pagination: &response.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalItems: total,
			HasMore:    int64(page) < totalPages,
			From:       from,
			To:         to,
		},
	})
}

func (h *AttemptHandler) Categories(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get categories",
		Data:    fiber.Map{"categories": h.uc.Categories()},
	})
}

func toAttemptDTO(a model.TestAttempt) dto.TestAttemptDTO {
	return dto.TestAttemptDTO{
		ID:        a.ID,
		Category:  a.Category,
		Level:     a.Level,
		TestName:  a.TestName,
		Status:    a.Status,
		Score:     a.Score,
		Completed: a.Completed,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
