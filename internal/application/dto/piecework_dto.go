package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

// ── Categorías ────────────────────────────────────────────────────────────────

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryRequest actualización parcial (campos omitidos no cambian).
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// ToPatch convierte a entity.CategoryPatch.
func (r UpdateCategoryRequest) ToPatch() entity.CategoryPatch {
	return entity.CategoryPatch{Name: r.Name, Description: r.Description, IsActive: r.IsActive}
}

// CategoryResponse salida de categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategoryResponse mapea una categoría.
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NewCategoryList mapea un listado; nunca devuelve nil.
func NewCategoryList(cs []*entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}

// CleanupResponse resultado de la limpieza de categorías sin precio.
// En modo dry-run solo se llenan Candidates.
type CleanupResponse struct {
	Success      bool               `json:"success"`
	DeletedCount int64              `json:"deleted_count"`
	DryRun       bool               `json:"dry_run,omitempty"`
	Candidates   []CategoryResponse `json:"candidates,omitempty"`
}

// ── Precios ───────────────────────────────────────────────────────────────────

// PriceRequest entrada para crear o reemplazar un precio de categoría.
type PriceRequest struct {
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	CategoryID    string          `json:"category_id" validate:"required"`
	DriverType    string          `json:"driver_type" validate:"required,oneof=driver_only with_vehicle"`
	Price         decimal.Decimal `json:"price"`
	EffectiveDate string          `json:"effective_date" validate:"required,datetime=2006-01-02"`
}

// BatchPriceRequest varios precios en una sola transacción.
type BatchPriceRequest struct {
	Prices []PriceRequest `json:"prices" validate:"required,min=1,dive"`
}

// PriceResponse salida de precio de categoría.
type PriceResponse struct {
	ID            string          `json:"id"`
	WarehouseID   string          `json:"warehouse_id"`
	CategoryID    string          `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	Price         decimal.Decimal `json:"price"`
	DriverType    string          `json:"driver_type"`
	EffectiveDate string          `json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewPriceResponse mapea un precio.
func NewPriceResponse(p *entity.CategoryPrice) PriceResponse {
	return PriceResponse{
		ID:            p.ID,
		WarehouseID:   p.WarehouseID,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		Price:         p.Price,
		DriverType:    p.DriverType,
		EffectiveDate: p.EffectiveDate.Format(entity.DateLayout),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewPriceList mapea un listado; nunca devuelve nil.
func NewPriceList(ps []*entity.CategoryPrice) []PriceResponse {
	out := make([]PriceResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPriceResponse(p))
	}
	return out
}

// PriceQuoteResponse precio vigente. UnitPrice/UpstairsPrice son nil si ese tipo no tiene fila.
type PriceQuoteResponse struct {
	WarehouseID   string           `json:"warehouse_id"`
	CategoryID    string           `json:"category_id"`
	DriverType    string           `json:"driver_type,omitempty"`
	Date          string           `json:"date"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	UpstairsPrice *decimal.Decimal `json:"upstairs_price"`
	AppliedPrice  decimal.Decimal  `json:"applied_price"`
	Locked        bool             `json:"locked"`
}

// ── Registros a destajo ───────────────────────────────────────────────────────

// PieceWorkItemRequest ítem de captura. Las reglas numéricas las valida el dominio.
type PieceWorkItemRequest struct {
	CategoryID       string           `json:"category_id" validate:"required"`
	Quantity         *int64           `json:"quantity" validate:"required"`
	UnitPrice        *decimal.Decimal `json:"unit_price" validate:"required"`
	NeedUpstairs     bool             `json:"need_upstairs"`
	UpstairsPrice    *decimal.Decimal `json:"upstairs_price"`
	NeedSorting      bool             `json:"need_sorting"`
	SortingQuantity  *int64           `json:"sorting_quantity"`
	SortingUnitPrice *decimal.Decimal `json:"sorting_unit_price"`
	Notes            string           `json:"notes" validate:"max=1000"`
}

// ToEntity convierte a entity.PieceWorkItem.
func (r PieceWorkItemRequest) ToEntity() entity.PieceWorkItem {
	return entity.PieceWorkItem{
		CategoryID:       r.CategoryID,
		Quantity:         r.Quantity,
		UnitPrice:        r.UnitPrice,
		NeedUpstairs:     r.NeedUpstairs,
		UpstairsPrice:    r.UpstairsPrice,
		NeedSorting:      r.NeedSorting,
		SortingQuantity:  r.SortingQuantity,
		SortingUnitPrice: r.SortingUnitPrice,
		Notes:            r.Notes,
	}
}

// ToItems convierte una lista de ítems conservando el orden.
func ToItems(reqs []PieceWorkItemRequest) []entity.PieceWorkItem {
	items := make([]entity.PieceWorkItem, len(reqs))
	for i, r := range reqs {
		items[i] = r.ToEntity()
	}
	return items
}

// SubmitRequest envío de un conductor. UserID vacío = usuario del token.
type SubmitRequest struct {
	UserID      string                 `json:"user_id"`
	WarehouseID string                 `json:"warehouse_id" validate:"required"`
	WorkDate    string                 `json:"work_date" validate:"required,datetime=2006-01-02"`
	Accumulate  bool                   `json:"accumulate"`
	Items       []PieceWorkItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AccumulateRequest ítems a acumular sobre un registro existente.
type AccumulateRequest struct {
	Items []PieceWorkItemRequest `json:"items" validate:"required,min=1,dive"`
}

// RecordResponse salida de registro a destajo. Importes como strings decimales.
type RecordResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	WarehouseID      string          `json:"warehouse_id"`
	CategoryID       string          `json:"category_id"`
	WorkDate         string          `json:"work_date"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	NeedUpstairs     bool            `json:"need_upstairs"`
	UpstairsPrice    decimal.Decimal `json:"upstairs_price"`
	NeedSorting      bool            `json:"need_sorting"`
	SortingQuantity  int64           `json:"sorting_quantity"`
	SortingUnitPrice decimal.Decimal `json:"sorting_unit_price"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	UpstairsAmount   decimal.Decimal `json:"upstairs_amount"`
	SortingAmount    decimal.Decimal `json:"sorting_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Notes            string          `json:"notes"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewRecordResponse mapea un registro.
func NewRecordResponse(r *entity.PieceWorkRecord) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		WarehouseID:      r.WarehouseID,
		CategoryID:       r.CategoryID,
		WorkDate:         r.WorkDate.Format(entity.DateLayout),
		Quantity:         r.Quantity,
		UnitPrice:        r.UnitPrice,
		NeedUpstairs:     r.NeedUpstairs,
		UpstairsPrice:    r.UpstairsPrice,
		NeedSorting:      r.NeedSorting,
		SortingQuantity:  r.SortingQuantity,
		SortingUnitPrice: r.SortingUnitPrice,
		BaseAmount:       r.BaseAmount,
		UpstairsAmount:   r.UpstairsAmount,
		SortingAmount:    r.SortingAmount,
		TotalAmount:      r.TotalAmount,
		Notes:            r.Notes,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// NewRecordList mapea un listado; nunca devuelve nil.
func NewRecordList(rs []*entity.PieceWorkRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewRecordResponse(r))
	}
	return out
}

// SubmitResponse registros creados y acumulados por un envío.
type SubmitResponse struct {
	Created []RecordResponse `json:"created"`
	Merged  []RecordResponse `json:"merged"`
}

// ListResponse envoltorio de listados.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewList construye el envoltorio.
func NewList[T any](items []T) ListResponse[T] {
	return ListResponse[T]{Items: items, Total: len(items)}
}
