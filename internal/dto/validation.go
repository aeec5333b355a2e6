package dto

import (
	"fmt"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by the request DTOs to gin's validator.
// It must run before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("sourcetype", validateSourceType)
}

func validateSourceType(fl validator.FieldLevel) bool {
	return domain.SourceType(fl.Field().String()).Valid()
}
