package handler

import (
	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the "stage" tag used by request DTOs.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("stage", func(fl playground.FieldLevel) bool {
		_, err := domain.ParseStage(fl.Field().String())
		return err == nil
	})
}
