package appointment

import "errors"

var (
	ErrNotFound        = errors.New("cita no encontrada")
	ErrPatientNotFound = errors.New("el paciente indicado no existe")
)
