package cart

import (
	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/internal/pricing"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// Line is one product+options entry inside a vendor bucket. Identity within
// the aggregate is the pair (product id, selected options); the same product
// with a different option selection is a separate line.
type Line struct {
	Product  *models.Product
	Quantity int
	Options  types.SelectedOptions
}

func (l *Line) matches(productID uuid.UUID, options types.SelectedOptions) bool {
	return l.Product.ID == productID && l.Options.Equal(options)
}

// Bucket groups the lines belonging to a single vendor.
type Bucket struct {
	StoreID uuid.UUID
	Lines   []*Line
}

// Aggregate is one buyer's cart: vendor buckets in first-touch order, lines
// per bucket in insertion order. Empty buckets never persist.
type Aggregate struct {
	order   []uuid.UUID
	buckets map[uuid.UUID][]*Line
}

func NewAggregate() *Aggregate {
	return &Aggregate{buckets: make(map[uuid.UUID][]*Line)}
}

// AddLine validates and appends a line, merging with an existing line when
// the (product, options) pair is already in the cart. Quantities beyond the
// product's stock are clamped to the stock, not rejected.
func (a *Aggregate) AddLine(product *models.Product, quantity int, options types.SelectedOptions) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if product.Stock < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product out of stock").
			WithDetails(map[string]any{"product_id": product.ID})
	}
	if err := validateOptions(product, options); err != nil {
		return err
	}
	if _, err := pricing.UnitPrice(product); err != nil {
		return err
	}

	if line := a.findLine(product.StoreID, product.ID, options); line != nil {
		line.Quantity = clamp(line.Quantity+quantity, product.Stock)
		return nil
	}

	if _, exists := a.buckets[product.StoreID]; !exists {
		a.order = append(a.order, product.StoreID)
	}
	a.buckets[product.StoreID] = append(a.buckets[product.StoreID], &Line{
		Product:  product,
		Quantity: clamp(quantity, product.Stock),
		Options:  options.Clone(),
	})
	return nil
}

// UpdateQuantity sets a line's quantity, clamped to the product's stock. A
// target of zero or below removes the line instead.
func (a *Aggregate) UpdateQuantity(storeID, productID uuid.UUID, quantity int, options types.SelectedOptions) error {
	if quantity <= 0 {
		return a.RemoveLine(storeID, productID, options)
	}

	line := a.findLine(storeID, productID, options)
	if line == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	line.Quantity = clamp(quantity, line.Product.Stock)
	return nil
}

// RemoveLine drops the matching line. When it was the vendor's last line the
// whole bucket goes with it.
func (a *Aggregate) RemoveLine(storeID, productID uuid.UUID, options types.SelectedOptions) error {
	lines, ok := a.buckets[storeID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	for i, line := range lines {
		if !line.matches(productID, options) {
			continue
		}
		lines = append(lines[:i], lines[i+1:]...)
		if len(lines) == 0 {
			delete(a.buckets, storeID)
			a.dropVendor(storeID)
		} else {
			a.buckets[storeID] = lines
		}
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// Buckets returns the vendor groups in first-touch order.
func (a *Aggregate) Buckets() []Bucket {
	out := make([]Bucket, 0, len(a.order))
	for _, storeID := range a.order {
		lines := a.buckets[storeID]
		copied := make([]*Line, len(lines))
		copy(copied, lines)
		out = append(out, Bucket{StoreID: storeID, Lines: copied})
	}
	return out
}

// TotalItemCount sums quantities across every line in every bucket.
func (a *Aggregate) TotalItemCount() int {
	var total int
	for _, lines := range a.buckets {
		for _, line := range lines {
			total += line.Quantity
		}
	}
	return total
}

// TotalValue sums effective unit price times quantity across the cart.
func (a *Aggregate) TotalValue() (int, error) {
	var total int
	for _, storeID := range a.order {
		for _, line := range a.buckets[storeID] {
			unit, err := pricing.UnitPrice(line.Product)
			if err != nil {
				return 0, err
			}
			total += unit * line.Quantity
		}
	}
	return total, nil
}

// VendorCount reports how many vendor buckets the cart holds.
func (a *Aggregate) VendorCount() int {
	return len(a.order)
}

func (a *Aggregate) IsEmpty() bool {
	return len(a.order) == 0
}

// Clear empties every bucket.
func (a *Aggregate) Clear() {
	a.order = nil
	a.buckets = make(map[uuid.UUID][]*Line)
}

func (a *Aggregate) findLine(storeID, productID uuid.UUID, options types.SelectedOptions) *Line {
	for _, line := range a.buckets[storeID] {
		if line.matches(productID, options) {
			return line
		}
	}
	return nil
}

func (a *Aggregate) dropVendor(storeID uuid.UUID) {
	for i, id := range a.order {
		if id == storeID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

// validateOptions requires exactly one chosen value per variant axis the
// product defines, with no extra axes. Products without variants accept only
// an empty selection.
func validateOptions(product *models.Product, options types.SelectedOptions) error {
	for _, axis := range product.VariantAxes {
		chosen, ok := options[axis.Name]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "missing option for variant axis").
				WithDetails(map[string]any{"axis": axis.Name})
		}
		if !product.VariantAxes.HasOption(axis.Name, chosen) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown option value for variant axis").
				WithDetails(map[string]any{"axis": axis.Name, "option": chosen})
		}
	}
	if len(options) != len(product.VariantAxes) {
		return pkgerrors.New(pkgerrors.CodeValidation, "selection names an axis the product does not define").
			WithDetails(map[string]any{"axes": product.VariantAxes.Names()})
	}
	return nil
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}
