// internal/validation/validation.go
package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"muzplay.kz/internal/auth"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("complex_password", validateComplexPassword)
	validate.RegisterValidation("username_chars", validateUsernameChars)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func ValidateStruct(data interface{}) url.Values {
	err := validate.Struct(data)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) url.Values {
	errorsMap := url.Values{}
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrs {
			errorsMap.Add(fieldErr.Field(), getErrorMessage(fieldErr))
		}
	} else {
		errorsMap.Add("general", "Ошибка валидации: "+err.Error())
	}
	return errorsMap
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "Это поле обязательно для заполнения."
	case "email":
		return "Введите корректный адрес электронной почты."
	case "min":
		return fmt.Sprintf("Минимальная длина этого поля: %s символов.", err.Param())
	case "max":
		return fmt.Sprintf("Максимальная длина этого поля: %s символов.", err.Param())
	case "len":
		return fmt.Sprintf("Длина этого поля должна быть ровно %s символов.", err.Param())
	case "numeric":
		return "Поле может содержать только цифры."
	case "uuid4":
		return "Некорректный идентификатор запроса. Запросите код повторно."
	case "eqfield":
		return "Пароли не совпадают."
	case "complex_password":
		return "Пароль должен содержать буквы, цифры и символы."
	case "username_chars":
		return "Имя пользователя может содержать только латинские буквы, цифры, точку, дефис и подчёркивание."
	default:
		return fmt.Sprintf("Некорректное значение для поля %s (тег: %s).", err.Field(), err.Tag())
	}
}

func validateComplexPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if password == "" {
		return true
	}
	return auth.IsPasswordComplex(password)
}

func validateUsernameChars(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	if username == "" {
		return true
	}
	return auth.IsValidUsername(username)
}
