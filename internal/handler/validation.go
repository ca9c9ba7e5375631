package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// cnicPattern accepts dash-separated digit groups, e.g. "12345-1234567-1".
var cnicPattern = regexp.MustCompile(`^[0-9]+(-[0-9]+)*$`)

// RegisterValidators installs the custom binding rules used by request
// schemas. Must run once before the router handles traffic.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("cnic", func(fl validator.FieldLevel) bool {
			cnic := fl.Field().String()
			return len(cnic) >= 5 && len(cnic) <= 20 && cnicPattern.MatchString(cnic)
		})
	}
}
