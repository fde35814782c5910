// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	"github.com/ghuser/itemstore/services/item/domain/models"
)

// ValidateItemForCreation performs whole-aggregate validation on an Item
// before it is persisted. Items built from the value constructors already
// satisfy the per-field rules; this re-checks them so hand-assembled
// aggregates (seeders, CLI imports) cannot bypass the rule table.
func ValidateItemForCreation(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", itemdomain.ErrInvalidItem)
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("%w: id must be set", itemdomain.ErrInvalidItem)
	}

	if _, err := models.NewItemName(item.Name.String()); err != nil {
		return err
	}

	if d, ok := item.DescriptionString(); ok {
		if _, err := models.NewDescription(d); err != nil {
			return err
		}
	}

	if _, err := models.NewPrice(item.Price.Float64()); err != nil {
		return err
	}

	return nil
}
