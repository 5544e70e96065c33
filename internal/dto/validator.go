package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"shortlink-go/pkg/utils"
)

// RegisterValidators 向 gin 的 validator 注册自定义 tag
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return utils.ValidateShortCode(fl.Field().String()) == nil
	})
}
