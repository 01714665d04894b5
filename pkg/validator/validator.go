package validator

import (
	"net/http"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

const (
	// TagSimSlot accepts SIM 1 (0) or SIM 2 (1), as an int or its string form.
	TagSimSlot = "simslot"
	// TagPhone accepts any value containing at least one digit.
	TagPhone = "phone"
)

// CustomValidator wraps the validator instance for Echo.
type CustomValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func New() *CustomValidator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := field.Tag.Get("json")
		if tag == "" {
			return field.Name
		}

		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic("failed to register validator default translations: " + err.Error())
	}

	registerSMSRules(validate, trans)

	return &CustomValidator{
		validator:  validate,
		translator: trans,
	}
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{
				Errors: cv.translateErrors(validationErrors),
			}
		}
		return err
	}
	return nil
}

// ValidSimSlot reports whether slot addresses one of the two SIM slots.
func ValidSimSlot(slot int) bool {
	return slot == 0 || slot == 1
}

// HasDigit reports whether s contains at least one decimal digit.
func HasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func registerSMSRules(validate *validator.Validate, trans ut.Translator) {
	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{tag: TagSimSlot, fn: validateSimSlot, message: "{0} must be 0 (SIM 1) or 1 (SIM 2)"},
		{tag: TagPhone, fn: validatePhone, message: "{0} must contain at least one digit"},
	}

	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			panic("failed to register " + rule.tag + " validation: " + err.Error())
		}

		tag, message := rule.tag, rule.message
		err := validate.RegisterTranslation(tag, trans,
			func(tr ut.Translator) error {
				return tr.Add(tag, message, true)
			},
			func(tr ut.Translator, fe validator.FieldError) string {
				text, _ := tr.T(tag, fe.Field())
				return text
			},
		)
		if err != nil {
			panic("failed to register " + tag + " translation: " + err.Error())
		}
	}
}

func validateSimSlot(fl validator.FieldLevel) bool {
	field := fl.Field()

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ValidSimSlot(int(field.Int()))
	case reflect.String:
		switch strings.TrimSpace(field.String()) {
		case "0", "1":
			return true
		}
	}

	return false
}

func validatePhone(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return HasDigit(field.String())
}

func (cv *CustomValidator) translateErrors(errs validator.ValidationErrors) map[string]string {
	errors := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		errors[field] = err.Translate(cv.translator)
	}
	return errors
}

type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, field := range e.Fields() {
		messages = append(messages, field+": "+e.Errors[field])
	}
	return strings.Join(messages, "; ")
}

// Fields returns the failing field names in a stable order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func HandleValidationError(c echo.Context, err error) error {
	if ve, ok := err.(*ValidationError); ok {
		return c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Success: false,
			Error:   "Validation failed",
			Details: ve.Errors,
		})
	}
	return c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}
