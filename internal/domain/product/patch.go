package product

// Optional records whether a value was supplied at all. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

func (o Optional[T]) IsSet() bool { return o.set }

// Patch is a sparse update. Unset fields leave the stored column untouched; a
// set nullable field whose value is nil writes NULL.
type Patch struct {
	Name        Optional[string]
	Description Optional[*string]
	Price       Optional[Price]
	Quantity    Optional[Quantity]
	Category    Optional[*string]
	SKU         Optional[*string]
	IsActive    Optional[bool]
}

func (p Patch) IsEmpty() bool {
	return !p.Name.set && !p.Description.set && !p.Price.set && !p.Quantity.set &&
		!p.Category.set && !p.SKU.set && !p.IsActive.set
}

// Apply returns a copy of prod with the set fields of the patch written over it.
func (p Patch) Apply(prod Product) Product {
	if v, ok := p.Name.Get(); ok {
		prod.Name = v
	}
	if v, ok := p.Description.Get(); ok {
		prod.Description = v
	}
	if v, ok := p.Price.Get(); ok {
		prod.Price = v
	}
	if v, ok := p.Quantity.Get(); ok {
		prod.Quantity = v
	}
	if v, ok := p.Category.Get(); ok {
		prod.Category = v
	}
	if v, ok := p.SKU.Get(); ok {
		prod.SKU = v
	}
	if v, ok := p.IsActive.Get(); ok {
		prod.IsActive = v
	}
	return prod
}
