// Package validation проверяет входящие записи истории через struct-теги validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/DarshanM12/student-ecommerce/internal/domain"
)

// New возвращает валидатор, который называет поля по их json-именам.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// HistoryRecord проверяет наличие обязательных полей и переводит первую ошибку в доменную.
// Пустой, но присутствующий список items считается допустимым.
func HistoryRecord(v *validatorv10.Validate, record domain.HistoryRecord) error {
	err := v.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validatorv10.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate history record: %w", err)
	}

	switch fieldErrs[0].StructField() {
	case "ID", "OrderID":
		return domain.ErrHistoryIDRequired
	case "UserEmail":
		return domain.ErrHistoryOwnerRequired
	case "Items":
		return domain.ErrHistoryItemsRequired
	default:
		return fmt.Errorf("validate history record: %s: %s", fieldErrs[0].Field(), fieldErrs[0].Tag())
	}
}
