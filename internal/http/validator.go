// FILE: internal/http/validator.go
package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"arena/internal/core"
)

var validate = validator.New()

// validationMiddleware parses and validates POST bodies by route and stores
// the result for the handler.
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/matches"):
		requestType = &core.CreateMatchRequest{}
	case strings.HasSuffix(path, "/moves"):
		requestType = &core.MatchMoveRequest{}
	case strings.HasSuffix(path, "/end"):
		requestType = &core.EndMatchRequest{}
	case strings.HasSuffix(path, "/decisions"):
		requestType = &core.HumanDecisionRequest{}
	case strings.HasSuffix(path, "/move"):
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/board"):
		requestType = &core.RenderBoardRequest{}
	case strings.HasSuffix(path, "/stress"):
		requestType = &core.StressTestRequest{}
	default:
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(requestType); errs != nil {
		var verrs validator.ValidationErrors
		details := errs.Error()
		if errors.As(errs, &verrs) {
			details = describe(verrs)
		}
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details,
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)
	return c.Next()
}

func describe(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", err.Namespace())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", err.Namespace(), err.Param())
		case "min":
			if err.Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be at least %s characters", err.Namespace(), err.Param())
			} else {
				fmt.Fprintf(&details, "%s must be at least %s", err.Namespace(), err.Param())
			}
		case "max":
			if err.Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be at most %s characters", err.Namespace(), err.Param())
			} else {
				fmt.Fprintf(&details, "%s must be at most %s", err.Namespace(), err.Param())
			}
		default:
			fmt.Fprintf(&details, "%s failed %s validation", err.Namespace(), err.Tag())
		}
	}
	return details.String()
}

// validated returns the body stored by validationMiddleware
func validated[T any](c *fiber.Ctx) (T, error) {
	var zero T
	if ok, _ := c.Locals("validated").(bool); !ok {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation bypass detected")
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return *body, nil
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
