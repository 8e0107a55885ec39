package web

import (
	"encoding/json"

	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// withErrors flattens problem into a JSON object and adds the per-field or
// per-action error list under "errors".
func withErrors(problem *problems.Problem, errs []string) (map[string]any, error) {
	raw, err := json.Marshal(problem)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		body["errors"] = errs
	}

	return body, nil
}

func badRequest(c fiber.Ctx, detail string, errs ...string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	body, err := withErrors(problem, errs)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusBadRequest).JSON(body)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error(), services.Details(err)...)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsDealNotFound(err):
		return notFound(c, "deal_not_found", "deal not found")

	case persistence.IsStageNotFound(err):
		return notFound(c, "stage_not_found", "stage not found")

	case persistence.IsNotFound(err):
		return notFound(c, "not_found", err.Error())

	default:
		return internalError(c, err)
	}
}
