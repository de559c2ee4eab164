package application

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Customer facing messages for booking validation failures.
const (
	MessageInvalidName  = "نام و نام خانوادگی کامل وارد کنید!"
	MessageInvalidPhone = "شماره تلفن معتبر وارد کنید!"
	MessageInvalidSlot  = "زمان انتخاب‌شده معتبر نیست!"
)

type bookingForm struct {
	Name  string `validate:"required,fullname"`
	Phone string `validate:"required,number,min=10"`
}

var (
	formValidatorOnce sync.Once
	formValidator     *validator.Validate
)

func bookingValidator() *validator.Validate {
	formValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := v.RegisterValidation("fullname", validateFullName); err != nil {
			panic(err)
		}
		formValidator = v
	})
	return formValidator
}

// validateFullName requires at least two whitespace separated tokens.
func validateFullName(fl validator.FieldLevel) bool {
	return len(strings.Fields(fl.Field().String())) >= 2
}

// validateBookingForm checks the name before the phone so a submission with
// both wrong reports the name.
func validateBookingForm(name, phone string) *ValidationError {
	err := bookingValidator().Struct(bookingForm{Name: name, Phone: phone})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return newValidationError(ErrInvalidName, "name", MessageInvalidName)
	}
	for _, fe := range fieldErrs {
		if fe.StructField() == "Name" {
			return newValidationError(ErrInvalidName, "name", MessageInvalidName)
		}
	}
	return newValidationError(ErrInvalidPhone, "phone", MessageInvalidPhone)
}
