package validator

import (
	"ctchen222/tictactoe-service/internal/game"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	bindingOnce  sync.Once
	customChecks = map[string]validator.Func{
		"cell": isCell,
	}
)

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range customChecks {
		_ = validate.RegisterValidation(tag, fn)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// RegisterBindings installs the custom tags on gin's binding validator.
func RegisterBindings() {
	bindingOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range customChecks {
			_ = engine.RegisterValidation(tag, fn)
		}
	})
}

// isCell accepts integer board positions 0..8.
func isCell(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p := fl.Field().Int()
		return p >= 0 && p < game.BoardSize
	}
	return false
}
