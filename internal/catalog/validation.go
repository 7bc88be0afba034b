package catalog

import (
	"fmt"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidProduct)
	}
	if p.CostPrice < 0 || p.SalePrice < 0 {
		return fmt.Errorf("%w: prices must be >= 0", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidProduct)
	}
	if p.ReorderThreshold < 0 {
		return fmt.Errorf("%w: reorder threshold must be >= 0", ErrInvalidProduct)
	}
	return nil
}
