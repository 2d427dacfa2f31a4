package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks content or customization that fails validation.
var ErrInvalid = errors.New("invalid resume data")

var (
	hexColorPattern   = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	resumeDatePattern = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?)?$`)
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		registerValidators(validate)
	})
	return validate
}

func registerValidators(v *validator.Validate) {
	_ = v.RegisterValidation("hexcolor6", validHexColor)
	_ = v.RegisterValidation("resumedate", validResumeDate)
	_ = v.RegisterValidation("layout", validLayout)
	_ = v.RegisterValidation("section", validSection)
	v.RegisterTagNameFunc(jsonFieldName)
}

func validHexColor(fl validator.FieldLevel) bool {
	return hexColorPattern.MatchString(fl.Field().String())
}

// validResumeDate accepts YYYY, YYYY-MM, YYYY-MM-DD or Present. Empty is allowed.
func validResumeDate(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" || strings.EqualFold(val, "present") {
		return true
	}
	return resumeDatePattern.MatchString(val)
}

func validLayout(fl validator.FieldLevel) bool {
	_, ok := ParseLayout(fl.Field().String())
	return ok
}

func validSection(fl validator.FieldLevel) bool {
	return IsSection(fl.Field().String())
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError collects field-level failures. It unwraps to ErrInvalid.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// ValidateCustomization checks customization ranges, colors and enums.
func ValidateCustomization(c Customization) error {
	return toValidationError(validatorInstance().Struct(c), nil)
}

// ValidateContent checks entry dates, skill ratings, metric kinds and identifier uniqueness.
func ValidateContent(c Content) error {
	var extra []FieldError
	extra = append(extra, duplicateIDs("experience", idsOf(c.Experience, func(e Experience) string { return e.ID }))...)
	extra = append(extra, duplicateIDs("education", idsOf(c.Education, func(e Education) string { return e.ID }))...)
	extra = append(extra, duplicateIDs("projects", idsOf(c.Projects, func(e Project) string { return e.ID }))...)
	extra = append(extra, duplicateIDs("certificates", idsOf(c.Certificates, func(e Certificate) string { return e.ID }))...)
	extra = append(extra, duplicateIDs("activities", idsOf(c.Activities, func(e Activity) string { return e.ID }))...)
	extra = append(extra, duplicateIDs("skillsWithProficiency", idsOf(c.SkillsWithProficiency, func(e SkillWithProficiency) string { return e.ID }))...)
	return toValidationError(validatorInstance().Struct(c), extra)
}

func toValidationError(err error, extra []FieldError) error {
	out := &ValidationError{Fields: extra}
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{
				Field:   trimNamespace(fe.Namespace()),
				Rule:    fe.Tag(),
				Message: fieldMessage(fe),
			})
		}
	}
	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return strings.TrimPrefix(ns, "Sections.")
}

func fieldMessage(fe validator.FieldError) string {
	field := trimNamespace(fe.Namespace())
	switch fe.Tag() {
	case "min", "max":
		return fmt.Sprintf("%s must be within the allowed range (%s %s)", field, fe.Tag(), fe.Param())
	case "hexcolor6":
		return fmt.Sprintf("%s must be a hex color like #3B82F6", field)
	case "resumedate":
		return fmt.Sprintf("%s must be YYYY-MM or Present", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "layout":
		return fmt.Sprintf("%s is not a known layout", field)
	case "section":
		return fmt.Sprintf("%s is not a known section", field)
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func duplicateIDs(section string, ids []string) []FieldError {
	seen := make(map[string]struct{}, len(ids))
	var out []FieldError
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			out = append(out, FieldError{
				Field:   section,
				Rule:    "unique_id",
				Message: fmt.Sprintf("%s has duplicate id %q", section, id),
			})
			continue
		}
		seen[id] = struct{}{}
	}
	return out
}
