package domainErrors

import "errors"

var (
	ErrUnauthorized     = errors.New("нет прав администратора") //проверяется до любого похода в базу
	ErrNotFound         = errors.New("ресурс не найден")
	ErrUnknownResource  = errors.New("неизвестный тип ресурса")
	ErrNoChanges        = errors.New("изменений нет") //diff пустой, намеренный отказ а не успех
	ErrValidationFailed = errors.New("ошибка проверки")
	ErrUnknownField     = errors.New("неизвестное поле")
	ErrInvalidStatus    = errors.New("значение вне словаря статусов")
	ErrDepUnavailable   = errors.New("хранилище недоступно")
	ErrMissingDependent = errors.New("зависимая запись не найдена") //каскадное удаление
	ErrInternalError    = errors.New("внутренняя ошибка")
)

// Привязка ошибок к кодам
var ErrorCodes = map[error]string{
	ErrUnauthorized:     "UNAUTHORIZED",
	ErrNotFound:         "NOT_FOUND",
	ErrUnknownResource:  "UNKNOWN_RESOURCE",
	ErrNoChanges:        "NO_CHANGES",
	ErrValidationFailed: "VALIDATION_FAILED",
	ErrUnknownField:     "UNKNOWN_FIELD",
	ErrInvalidStatus:    "INVALID_STATUS",
	ErrDepUnavailable:   "DEPENDENCY_UNAVAILABLE",
	ErrMissingDependent: "MISSING_DEPENDENT",
	ErrInternalError:    "INTERNAL_ERROR",
}

// Code возвращает строковый код ошибки, UNKNOWN если не зарегистрирована
func Code(err error) string {
	for e, code := range ErrorCodes {
		if errors.Is(err, e) {
			return code
		}
	}
	return "UNKNOWN"
}

// ErrorByCode - обратный поиск по коду, для результатов bulk-операций.
func ErrorByCode(code string) error {
	for e, c := range ErrorCodes {
		if c == code {
			return e
		}
	}
	return ErrInternalError
}
