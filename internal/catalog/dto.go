package catalog

type ProductForm struct {
	Name             string `json:"name" validate:"required"`
	CostPrice        int64  `json:"cost_price" validate:"gte=0"`
	SalePrice        int64  `json:"sale_price" validate:"gte=0"`
	Stock            int64  `json:"stock" validate:"gte=0"`
	ReorderThreshold int64  `json:"reorder_threshold" validate:"gte=0"`
}
