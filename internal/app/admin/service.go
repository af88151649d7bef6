package admin

import (
	"errors"

	"ADMINKA1.0/internal/aggregate"
	"ADMINKA1.0/internal/audit"
	"ADMINKA1.0/internal/bulk"
	"ADMINKA1.0/internal/lifecycle"
	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/storage"

	"github.com/go-playground/validator/v10"
)

type Implementation struct {
	lifecycle *lifecycle.Service
	composer  *aggregate.Composer
	auditLog  *audit.Log
	operator  *bulk.Operator
	storage   storage.Storage
	validate  *validator.Validate
}

func New(l *lifecycle.Service, c *aggregate.Composer, a *audit.Log, o *bulk.Operator, s storage.Storage) *Implementation {
	return &Implementation{
		lifecycle: l,
		composer:  c,
		auditLog:  a,
		operator:  o,
		storage:   s,
		validate:  validator.New(),
	}
}

// toDomain приводит ошибки хранилища к доменным: отсутствие строки -
// NotFound, всё остальное на первичном пути - недоступность зависимости.
func toDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case storage.IsNotFound(err):
		return domainErrors.ErrNotFound
	case errors.Is(err, domainErrors.ErrUnknownResource),
		errors.Is(err, domainErrors.ErrValidationFailed),
		errors.Is(err, domainErrors.ErrUnknownField),
		errors.Is(err, domainErrors.ErrInvalidStatus),
		errors.Is(err, domainErrors.ErrNoChanges),
		errors.Is(err, domainErrors.ErrMissingDependent),
		errors.Is(err, domainErrors.ErrDepUnavailable):
		return err
	default:
		return domainErrors.ErrDepUnavailable
	}
}
