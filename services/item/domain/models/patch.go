package models

import (
	"fmt"

	"github.com/ghuser/itemstore/pkg/optional"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// Field names a mutable item attribute. Values double as storage column names.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldAvailable   Field = "available"
)

// FieldValue is one present entry of an ItemPatch.
// Value is string, float64 or bool; nil means "set to NULL".
type FieldValue struct {
	Field Field
	Value any
}

// ItemPatch is a partial update. Absent fields are left untouched by every
// store adapter; only Description may be explicitly null.
type ItemPatch struct {
	Name        optional.Value[ItemName]
	Description optional.Value[Description]
	Price       optional.Value[Price]
	Available   optional.Value[bool]
}

// NewItemPatch validates raw optional fields and builds an ItemPatch.
// Null is rejected for name, price and available.
func NewItemPatch(
	name optional.Value[string],
	description optional.Value[string],
	price optional.Value[float64],
	available optional.Value[bool],
) (ItemPatch, error) {
	switch {
	case name.IsNull():
		return ItemPatch{}, fmt.Errorf("%w: must not be null", itemdomain.ErrInvalidItemName)
	case price.IsNull():
		return ItemPatch{}, fmt.Errorf("%w: must not be null", itemdomain.ErrInvalidItemPrice)
	case available.IsNull():
		return ItemPatch{}, fmt.Errorf("%w: available must not be null", itemdomain.ErrInvalidItem)
	}

	var (
		p   ItemPatch
		err error
	)
	if p.Name, err = optional.Map(name, NewItemName); err != nil {
		return ItemPatch{}, err
	}
	if p.Description, err = optional.Map(description, NewDescription); err != nil {
		return ItemPatch{}, err
	}
	if p.Price, err = optional.Map(price, NewPrice); err != nil {
		return ItemPatch{}, err
	}
	p.Available = available
	return p, nil
}

// IsEmpty reports whether no field was supplied.
func (p ItemPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields returns only the supplied fields, in a stable order.
func (p ItemPatch) Fields() []FieldValue {
	fields := make([]FieldValue, 0, 4)
	if v, ok := p.Name.Get(); ok {
		fields = append(fields, FieldValue{Field: FieldName, Value: v.String()})
	}
	if p.Description.IsPresent() {
		var val any
		if v, ok := p.Description.Get(); ok {
			val = v.String()
		}
		fields = append(fields, FieldValue{Field: FieldDescription, Value: val})
	}
	if v, ok := p.Price.Get(); ok {
		fields = append(fields, FieldValue{Field: FieldPrice, Value: v.Float64()})
	}
	if v, ok := p.Available.Get(); ok {
		fields = append(fields, FieldValue{Field: FieldAvailable, Value: v})
	}
	return fields
}

// Apply writes the supplied fields onto item and leaves every other field as is.
func (p ItemPatch) Apply(item *Item) {
	for _, f := range p.Fields() {
		switch f.Field {
		case FieldName:
			item.Name = ItemName(f.Value.(string))
		case FieldDescription:
			if f.Value == nil {
				item.Description = nil
				continue
			}
			d := Description(f.Value.(string))
			item.Description = &d
		case FieldPrice:
			item.Price = Price(f.Value.(float64))
		case FieldAvailable:
			item.Available = f.Value.(bool)
		}
	}
}
