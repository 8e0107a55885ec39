// Package web provides HTTP handlers and REST API endpoints for stage automations.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/dealflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	dealService       *services.Deals
	automationService *services.Automations
	sweepService      *services.Sweeps
	ruleService       *services.Rules
	validator         *validator.Validate
}

func NewAPIHandlers(
	dealService *services.Deals,
	automationService *services.Automations,
	sweepService *services.Sweeps,
	ruleService *services.Rules,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		dealService:       dealService,
		automationService: automationService,
		sweepService:      sweepService,
		ruleService:       ruleService,
		validator:         validator,
	}
}

// Register mounts every endpoint on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/actions", h.ListActionTypes)

	org := router.Group("/organizations/:orgId")
	org.Post("/deals/:dealId/stage", h.MoveDealToStage)
	org.Get("/deals/:dealId/transitions", h.ListDealTransitions)
	org.Get("/stages/:stageId/automations", h.ListStageAutomations)
	org.Post("/stages/:stageId/automations", h.CreateStageAutomation)
	org.Post("/sweeps", h.RunSweep)
	org.Get("/automation-rules", h.ListAutomationRules)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.automationService.RegistryHealth()
	repositoryCheck, repOk := h.dealService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "dealflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "dealflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) ListActionTypes(c fiber.Ctx) error {
	return c.JSON(ActionTypesResponse{Actions: h.automationService.ActionTypes()})
}

func (h *APIHandlers) MoveDealToStage(c fiber.Ctx) error {
	var req MoveDealRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.dealService.MoveToStage(c.Context(), c.Params("orgId"), c.Params("dealId"), req.StageID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ListDealTransitions(c fiber.Ctx) error {
	transitions, err := h.dealService.Transitions(c.Context(), c.Params("orgId"), c.Params("dealId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransitionsResponse{Transitions: transitions})
}

func (h *APIHandlers) ListStageAutomations(c fiber.Ctx) error {
	automations, err := h.automationService.ListByStage(c.Context(), c.Params("orgId"), c.Params("stageId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(AutomationsResponse{Automations: automations})
}

func (h *APIHandlers) CreateStageAutomation(c fiber.Ctx) error {
	var req CreateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.automationService.Create(c.Context(), c.Params("orgId"), c.Params("stageId"), req.toService())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) RunSweep(c fiber.Ctx) error {
	report, err := h.sweepService.Run(c.Context(), c.Params("orgId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) ListAutomationRules(c fiber.Ctx) error {
	rules, err := h.ruleService.ListActive(c.Context(), c.Params("orgId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(RulesResponse{Rules: rules})
}
