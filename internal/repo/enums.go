package repo

// Enumerations are stored by value and rendered by label.

type ProductCategory string

const (
	CategoryFrames        ProductCategory = "armazones"
	CategoryLenses        ProductCategory = "lentes"
	CategoryContactLenses ProductCategory = "lentes_contacto"
	CategoryAccessories   ProductCategory = "accesorios"
)

// ProductCategories lists every category in display order.
var ProductCategories = []ProductCategory{CategoryFrames, CategoryLenses, CategoryContactLenses, CategoryAccessories}

var productCategoryLabels = map[ProductCategory]string{
	CategoryFrames:        "Armazones",
	CategoryLenses:        "Lentes",
	CategoryContactLenses: "Lentes de contacto",
	CategoryAccessories:   "Accesorios",
}

func (c ProductCategory) Valid() bool {
	_, ok := productCategoryLabels[c]
	return ok
}

func (c ProductCategory) Label() string {
	return label(productCategoryLabels, c)
}

type ProductStatus string

const (
	ProductStatusNormal   ProductStatus = "normal"
	ProductStatusLow      ProductStatus = "bajo"
	ProductStatusCritical ProductStatus = "critico"
)

var ProductStatuses = []ProductStatus{ProductStatusNormal, ProductStatusLow, ProductStatusCritical}

var productStatusLabels = map[ProductStatus]string{
	ProductStatusNormal:   "Normal",
	ProductStatusLow:      "Bajo",
	ProductStatusCritical: "Crítico",
}

func (s ProductStatus) Valid() bool {
	_, ok := productStatusLabels[s]
	return ok
}

func (s ProductStatus) Label() string {
	return label(productStatusLabels, s)
}

type ProductType string

const (
	ProductTypeOwn         ProductType = "propio"
	ProductTypeConsignment ProductType = "consignacion"
)

var ProductTypes = []ProductType{ProductTypeOwn, ProductTypeConsignment}

var productTypeLabels = map[ProductType]string{
	ProductTypeOwn:         "Propio",
	ProductTypeConsignment: "Consignación",
}

func (t ProductType) Valid() bool {
	_, ok := productTypeLabels[t]
	return ok
}

func (t ProductType) Label() string {
	return label(productTypeLabels, t)
}

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "activo"
	PatientStatusInactive PatientStatus = "inactivo"
)

var PatientStatuses = []PatientStatus{PatientStatusActive, PatientStatusInactive}

var patientStatusLabels = map[PatientStatus]string{
	PatientStatusActive:   "Activo",
	PatientStatusInactive: "Inactivo",
}

func (s PatientStatus) Valid() bool {
	_, ok := patientStatusLabels[s]
	return ok
}

func (s PatientStatus) Label() string {
	return label(patientStatusLabels, s)
}

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pendiente"
	AppointmentStatusConfirmed AppointmentStatus = "confirmada"
	AppointmentStatusCancelled AppointmentStatus = "cancelada"
)

var AppointmentStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled}

var appointmentStatusLabels = map[AppointmentStatus]string{
	AppointmentStatusPending:   "Pendiente",
	AppointmentStatusConfirmed: "Confirmada",
	AppointmentStatusCancelled: "Cancelada",
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentStatusLabels[s]
	return ok
}

func (s AppointmentStatus) Label() string {
	return label(appointmentStatusLabels, s)
}

type AppointmentType string

const (
	AppointmentTypeEyeExam  AppointmentType = "examen_visual"
	AppointmentTypeFollowUp AppointmentType = "control"
	AppointmentTypeDelivery AppointmentType = "entrega"
	AppointmentTypeConsult  AppointmentType = "consulta"
)

var AppointmentTypes = []AppointmentType{AppointmentTypeEyeExam, AppointmentTypeFollowUp, AppointmentTypeDelivery, AppointmentTypeConsult}

var appointmentTypeLabels = map[AppointmentType]string{
	AppointmentTypeEyeExam:  "Examen Visual",
	AppointmentTypeFollowUp: "Control",
	AppointmentTypeDelivery: "Entrega",
	AppointmentTypeConsult:  "Consulta",
}

func (t AppointmentType) Valid() bool {
	_, ok := appointmentTypeLabels[t]
	return ok
}

func (t AppointmentType) Label() string {
	return label(appointmentTypeLabels, t)
}

type SaleStatus string

const (
	SaleStatusNew        SaleStatus = "nuevo"
	SaleStatusInProgress SaleStatus = "en_proceso"
	SaleStatusDelivered  SaleStatus = "entregado"
	SaleStatusCancelled  SaleStatus = "cancelado"
)

var SaleStatuses = []SaleStatus{SaleStatusNew, SaleStatusInProgress, SaleStatusDelivered, SaleStatusCancelled}

var saleStatusLabels = map[SaleStatus]string{
	SaleStatusNew:        "Nuevo",
	SaleStatusInProgress: "En Proceso",
	SaleStatusDelivered:  "Entregado",
	SaleStatusCancelled:  "Cancelado",
}

func (s SaleStatus) Valid() bool {
	_, ok := saleStatusLabels[s]
	return ok
}

func (s SaleStatus) Label() string {
	return label(saleStatusLabels, s)
}

type PurchaseStatus string

const (
	PurchaseStatusPending    PurchaseStatus = "pendiente"
	PurchaseStatusProcessing PurchaseStatus = "procesando"
	PurchaseStatusReceived   PurchaseStatus = "recibido"
	PurchaseStatusCancelled  PurchaseStatus = "cancelado"
)

var PurchaseStatuses = []PurchaseStatus{PurchaseStatusPending, PurchaseStatusProcessing, PurchaseStatusReceived, PurchaseStatusCancelled}

var purchaseStatusLabels = map[PurchaseStatus]string{
	PurchaseStatusPending:    "Pendiente",
	PurchaseStatusProcessing: "Procesando",
	PurchaseStatusReceived:   "Recibido",
	PurchaseStatusCancelled:  "Cancelado",
}

func (s PurchaseStatus) Valid() bool {
	_, ok := purchaseStatusLabels[s]
	return ok
}

func (s PurchaseStatus) Label() string {
	return label(purchaseStatusLabels, s)
}

// Choice is a value/label pair as offered to list filters.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type enumValue interface {
	~string
	Label() string
}

// Choices renders values in the given order.
func Choices[T enumValue](values []T) []Choice {
	out := make([]Choice, 0, len(values))
	for _, v := range values {
		out = append(out, Choice{Value: string(v), Label: v.Label()})
	}
	return out
}

// EnumStrings returns the raw values, as the migrator wants them.
func EnumStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// unknown values render as themselves
func label[T ~string](labels map[T]string, v T) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return string(v)
}
