package product

import "errors"

var (
	ErrNotFound     = errors.New("producto no encontrado")
	ErrCodeConflict = errors.New("el código de producto ya existe")
)
