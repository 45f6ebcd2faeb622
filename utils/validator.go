package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TeamNamePattern is what a text channel name may look like: groups of
// lowercase letters and digits joined by single dashes.
var TeamNamePattern = regexp.MustCompile(`^([a-z0-9]+-)*[a-z0-9]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("teamname", func(fl validator.FieldLevel) bool {
		return TeamNamePattern.MatchString(fl.Field().String())
	})

	return v
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	return formatErrors(err)
}

// ValidateVar checks a single value against a tag list, e.g. "max=100".
func ValidateVar(field string, v interface{}, tag string) error {
	err := validate.Var(v, tag)
	if err == nil {
		return nil
	}

	return formatErrors(err, field)
}

// Format validation errors
func formatErrors(err error, name ...string) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errors []string
	for _, err := range verrs {
		field := strings.ToLower(err.Field())
		if field == "" && len(name) > 0 {
			field = name[0]
		}
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errors = append(errors, field+" is required")
		case "min":
			errors = append(errors, field+" must be at least "+param+" characters")
		case "max":
			errors = append(errors, field+" must be at most "+param+" characters")
		case "len":
			errors = append(errors, field+" must be exactly "+param+" characters")
		case "teamname":
			errors = append(errors, field+" may only contain lowercase letters and digits separated by dashes")
		case "oneof":
			errors = append(errors, field+" must be one of "+param)
		default:
			errors = append(errors, field+" is invalid")
		}
	}

	return &ValidationError{Tags: tagsOf(verrs), msg: strings.Join(errors, ", ")}
}

func tagsOf(verrs validator.ValidationErrors) []string {
	tags := make([]string, 0, len(verrs))
	for _, e := range verrs {
		tags = append(tags, e.Tag())
	}
	return tags
}

// ValidationError carries the failed validator tags next to the message.
type ValidationError struct {
	Tags []string
	msg  string
}

func (e *ValidationError) Error() string { return e.msg }

// Failed reports whether the given tag was among the failures.
func (e *ValidationError) Failed(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
