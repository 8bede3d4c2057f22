package uow

import "errors"

// Ошибки резолва репозиториев. Сентинелы, проверяются через errors.Is.
var (
	ErrRepositoryNotRegistered     = errors.New("uow: repository is not registered")
	ErrRepositoryAlreadyRegistered = errors.New("uow: repository is already registered")
	ErrInvalidRepositoryType       = errors.New("uow: unexpected repository type")
)
