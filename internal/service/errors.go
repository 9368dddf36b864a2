package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — записи нет в области видимости владельца.
	ErrNotFound = errors.New("ID Card not found")
	// ErrNoCards — у владельца нет ни одного удостоверения.
	ErrNoCards = fmt.Errorf("no ID cards found: %w", ErrNotFound)
	// ErrDuplicateIDNumber — номер удостоверения уже занят (у любого владельца).
	ErrDuplicateIDNumber = errors.New("ID Number already exists")
	// ErrNoFile — файл для импорта не передан.
	ErrNoFile = errors.New("no file uploaded")
	// ErrBadInput — не заполнены обязательные поля.
	ErrBadInput = errors.New("bad input")

	ErrLoginTaken         = errors.New("login already in use")
	ErrInvalidCredentials = errors.New("invalid login or password")
)
