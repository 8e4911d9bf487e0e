package handlers

import (
	"errors"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"gym_checkin_backend/internal/models"
)

var slotShape = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the class_category and time_slot binding rules to
// gin's validator. Request types use them in their binding tags, so it must
// run before any route is served. Whether a slot is offered for the chosen
// category is checked by the services; the binding rule only checks its shape.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		if err := v.RegisterValidation("class_category", validateClassCategory); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("time_slot", validateTimeSlot)
	})
	return registerErr
}

func validateClassCategory(fl validator.FieldLevel) bool {
	_, ok := models.ParseClassCategory(fl.Field().String())
	return ok
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return slotShape.MatchString(models.NormalizeTimeSlot(fl.Field().String()))
}
