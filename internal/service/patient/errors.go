package patient

import "errors"

var (
	ErrNotFound        = errors.New("paciente no encontrado")
	ErrEmailTaken      = errors.New("ya existe un paciente con ese email")
	ErrHistoryNotFound = errors.New("registro de compra no encontrado")
	ErrProductNotFound = errors.New("el producto indicado no existe")
)
