package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type payloadValidator struct {
	validate *validator.Validate
}

func newPayloadValidator() *payloadValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	return &payloadValidator{validate: validate}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func (pv *payloadValidator) Validate(payload interface{}) error {
	return pv.validate.Struct(payload)
}

// formatValidationErrors keys messages by the JSON field name.
func formatValidationErrors(err error) map[string]string {
	messages := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return messages
	}
	for _, fieldError := range validationErrors {
		field := fieldError.Field()
		switch fieldError.Tag() {
		case "required":
			messages[field] = field + " is required"
		case "email":
			messages[field] = field + " must be a valid email address"
		case "max":
			messages[field] = field + " must be at most " + fieldError.Param()
		case "min":
			messages[field] = field + " must be at least " + fieldError.Param()
		case "gte":
			messages[field] = field + " must be greater than or equal to " + fieldError.Param()
		case "lte":
			messages[field] = field + " must be less than or equal to " + fieldError.Param()
		case "oneof":
			messages[field] = field + " must be one of: " + fieldError.Param()
		default:
			messages[field] = field + " is invalid"
		}
	}
	return messages
}

type payloadError struct {
	fields map[string]string
}

func (err *payloadError) Error() string {
	return "invalid input"
}

// bindPayload parses the JSON body into payload and validates it.
func (handler *Handler) bindPayload(c *fiber.Ctx, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return &payloadError{}
	}
	if err := handler.validator.Validate(payload); err != nil {
		return &payloadError{fields: formatValidationErrors(err)}
	}
	return nil
}

func payloadErrorResponse(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": "invalid input"}
	var invalid *payloadError
	if errors.As(err, &invalid) && len(invalid.fields) > 0 {
		body["fields"] = invalid.fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
