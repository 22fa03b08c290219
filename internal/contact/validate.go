package contact

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Values is a contact form submission.
type Values struct {
	Name    string `json:"name" validate:"min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,au_phone"`
	Message string `json:"message" validate:"min=10,max=2000"`
}

// FieldError reports one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating a submission. Errors lists every failing field.
type Result struct {
	Values Values
	Errors []FieldError
}

// OK reports whether the submission passed validation.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// FieldMap returns errors keyed by field name.
func (r Result) FieldMap() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, fe := range r.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

var (
	auPhonePattern   = regexp.MustCompile(`^(\+61|61|0)[23478]\d{8}$`)
	phoneSeparators  = strings.NewReplacer(" ", "", "-", "", "\t", "")
	formValidator    = newValidator()
	fieldOrder       = []string{"name", "email", "phone", "message"}
	validationFields = map[string]string{
		"Name":    "name",
		"Email":   "email",
		"Phone":   "phone",
		"Message": "message",
	}
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("au_phone", func(fl validator.FieldLevel) bool {
		return ValidAustralianPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidAustralianPhone matches +61, 61 or 0 followed by an area digit in {2,3,4,7,8} and
// eight more digits. Spaces and hyphens are ignored.
func ValidAustralianPhone(raw string) bool {
	return auPhonePattern.MatchString(phoneSeparators.Replace(strings.TrimSpace(raw)))
}

// Validate checks every field and reports all failures in one pass.
func Validate(values Values) Result {
	res := Result{Values: values}
	if strings.TrimSpace(values.Phone) == "" {
		res.Values.Phone = ""
	}
	err := formValidator.Struct(res.Values)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Field: "form", Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		field := validationFields[fe.StructField()]
		res.Errors = append(res.Errors, FieldError{Field: field, Message: messageFor(field, fe.Tag())})
	}
	return res
}

// ValidateRaw validates loosely typed input such as a decoded JSON object. A field holding
// a non-string value is reported as a field error alongside any other failures.
func ValidateRaw(raw map[string]any) Result {
	var values Values
	typeErrors := map[string]FieldError{}
	for _, field := range fieldOrder {
		v, present := raw[field]
		if !present || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			typeErrors[field] = FieldError{Field: field, Message: fieldLabel(field) + " must be text"}
			continue
		}
		switch field {
		case "name":
			values.Name = s
		case "email":
			values.Email = s
		case "phone":
			values.Phone = s
		case "message":
			values.Message = s
		}
	}

	res := Validate(values)
	if len(typeErrors) == 0 {
		return res
	}
	byField := res.FieldMap()
	merged := make([]FieldError, 0, len(fieldOrder))
	for _, field := range fieldOrder {
		if te, ok := typeErrors[field]; ok {
			merged = append(merged, te)
			continue
		}
		if msg, ok := byField[field]; ok {
			merged = append(merged, FieldError{Field: field, Message: msg})
		}
	}
	res.Errors = merged
	return res
}

func messageFor(field, tag string) string {
	switch field {
	case "name":
		if tag == "max" {
			return "Name must be 100 characters or fewer"
		}
		return "Name must be at least 2 characters"
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid Australian phone number"
	case "message":
		if tag == "max" {
			return "Message must be 2000 characters or fewer"
		}
		return "Message must be at least 10 characters"
	default:
		return "Invalid value"
	}
}

func fieldLabel(field string) string {
	switch field {
	case "name":
		return "Name"
	case "email":
		return "Email"
	case "phone":
		return "Phone"
	default:
		return "Message"
	}
}
