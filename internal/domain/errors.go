package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора записи истории (id и orderId пусты).
	ErrHistoryIDRequired = errors.New("id or orderId is required")
	// Ошибка отсутствующего владельца записи истории.
	ErrHistoryOwnerRequired = errors.New("userEmail is required")
	// Ошибка отсутствующего списка позиций.
	ErrHistoryItemsRequired = errors.New("items are required")
	// ErrHistoryNotFound возвращается, если удаление не нашло ни одной записи.
	ErrHistoryNotFound = errors.New("history record not found")
	// ErrNoHistory — у пользователя нет истории для экспорта.
	ErrNoHistory = errors.New("no history to export")
	// ErrOrderNotFound возвращается, если активного заказа с таким id нет.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCancelWindowExpired — окно отмены заказа истекло.
	ErrCancelWindowExpired = errors.New("cancel window expired")
	// ErrCartEmpty — оформление заказа с пустой корзиной.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrProductNotFound — товара с таким id нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmailDomainNotAllowed — вход разрешён только с адресов кампуса.
	ErrEmailDomainNotAllowed = errors.New("email domain is not allowed")
	// ErrRemoteUnavailable — сервис истории недоступен или ответил ошибкой.
	ErrRemoteUnavailable = errors.New("history service unavailable")
	// ErrStorage — ошибка чтения/записи хранилища.
	ErrStorage = errors.New("storage failure")
)

// IsValidation проверяет, относится ли ошибка к валидации записи истории.
func IsValidation(err error) bool {
	return errors.Is(err, ErrHistoryIDRequired) ||
		errors.Is(err, ErrHistoryOwnerRequired) ||
		errors.Is(err, ErrHistoryItemsRequired)
}
