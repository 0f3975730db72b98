package model

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dentalops/clinic-api/internal/schedule"
)

// timeOfDay accepts "HH:MM" clock times, the wire format for slot starts
// and availability points.
func timeOfDay(fl validator.FieldLevel) bool {
	_, err := schedule.ParseTimePoint(fl.Field().String())
	return err == nil
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Registration only fails for an empty tag name.
		_ = v.RegisterValidation("timeofday", timeOfDay)
	}
}
