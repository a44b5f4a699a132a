package sale

import "errors"

var (
	ErrNotFound        = errors.New("venta no encontrada")
	ErrItemNotFound    = errors.New("ítem de venta no encontrado")
	ErrPatientNotFound = errors.New("el paciente indicado no existe")
	ErrProductNotFound = errors.New("el producto indicado no existe")
	ErrNumberConflict  = errors.New("el número de orden ya existe")
)
