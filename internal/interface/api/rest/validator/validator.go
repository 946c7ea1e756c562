package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "usercrud/internal/domain/record"
	"usercrud/internal/interface/api/rest/dto/auth"
	"usercrud/internal/interface/api/rest/dto/record"
)

var (
	ErrInvalidPage     = errors.New("invalid page")
	ErrInvalidPageSize = errors.New("invalid page_size")
)

// digits with optional leading +, spaces, dashes and parentheses
var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return v
}

// ToDetails flattens validator errors into json field -> message.
func ToDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return domain.MsgRequired
	case "min":
		return "This field may not be blank."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "phone":
		return "Enter a valid phone number."
	}
	return "Invalid value."
}

// ValidateRecord checks field shapes. Unless partial, every field is required.
func ValidateRecord(r record.Request, partial bool) map[string]string {
	errs := make(map[string]string)

	if err := validate.Struct(r); err != nil {
		for k, v := range ToDetails(err) {
			errs[k] = v
		}
	}

	if !partial {
		required := map[string]*string{
			domain.FieldName:        r.Name,
			domain.FieldFatherName:  r.FatherName,
			domain.FieldDateOfBirth: r.DateOfBirth,
			domain.FieldEmail:       r.Email,
			domain.FieldPhoneNumber: r.PhoneNumber,
		}
		for field, v := range required {
			if v == nil {
				errs[field] = domain.MsgRequired
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	r.Email = strings.TrimSpace(r.Email)
	if err := validate.Struct(r); err != nil {
		return ToDetails(err)
	}
	return nil
}

// ParseID accepts positive integer path ids only.
func ParseID(s string) (domain.ID, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return domain.ID(id), true
}

// ValidatePage reads page, page_size and search query values.
func ValidatePage(page, pageSize, search string) (domain.ListParams, error) {
	p := domain.ListParams{Search: strings.TrimSpace(search)}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return p, ErrInvalidPage
		}
		p.Page = n
	}
	if pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil || n < 1 {
			return p, ErrInvalidPageSize
		}
		p.PageSize = n
	}

	return p.Normalize(), nil
}
