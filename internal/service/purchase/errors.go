package purchase

import "errors"

var (
	ErrNotFound        = errors.New("compra no encontrada")
	ErrItemNotFound    = errors.New("ítem de compra no encontrado")
	ErrProductNotFound = errors.New("el producto indicado no existe")
	ErrNumberConflict  = errors.New("el número de compra ya existe")
)
