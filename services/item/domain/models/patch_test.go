package models

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ghuser/itemstore/pkg/optional"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

func absentString() optional.Value[string] { return optional.Value[string]{} }
func absentFloat() optional.Value[float64] { return optional.Value[float64]{} }
func absentBool() optional.Value[bool]     { return optional.Value[bool]{} }

func TestNewItemPatch_Empty(t *testing.T) {
	p, err := NewItemPatch(absentString(), absentString(), absentFloat(), absentBool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsEmpty() {
		t.Fatalf("expected empty patch, got fields %v", p.Fields())
	}
}

func TestNewItemPatch_RejectsNullForRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (ItemPatch, error)
		wantErr error
	}{
		{"null name", func() (ItemPatch, error) {
			return NewItemPatch(optional.Null[string](), absentString(), absentFloat(), absentBool())
		}, itemdomain.ErrInvalidItemName},
		{"null price", func() (ItemPatch, error) {
			return NewItemPatch(absentString(), absentString(), optional.Null[float64](), absentBool())
		}, itemdomain.ErrInvalidItemPrice},
		{"null available", func() (ItemPatch, error) {
			return NewItemPatch(absentString(), absentString(), absentFloat(), optional.Null[bool]())
		}, itemdomain.ErrInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewItemPatch_ValidatesSetValues(t *testing.T) {
	if _, err := NewItemPatch(absentString(), absentString(), optional.Of(0.0), absentBool()); !errors.Is(err, itemdomain.ErrInvalidItemPrice) {
		t.Fatalf("expected ErrInvalidItemPrice for zero price, got %v", err)
	}
	if _, err := NewItemPatch(optional.Of(""), absentString(), absentFloat(), absentBool()); !errors.Is(err, itemdomain.ErrInvalidItemName) {
		t.Fatalf("expected ErrInvalidItemName for empty name, got %v", err)
	}
}

func TestItemPatch_FieldsOnlyPresent(t *testing.T) {
	p, err := NewItemPatch(absentString(), optional.Null[string](), optional.Of(500.0), absentBool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []FieldValue{
		{Field: FieldDescription, Value: nil},
		{Field: FieldPrice, Value: 500.0},
	}
	if got := p.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields() = %#v, want %#v", got, want)
	}
}

func TestItemPatch_ApplyLeavesUnsuppliedFields(t *testing.T) {
	desc := Description("Best selling game")
	item := NewItem("Minecraft", &desc, 450, true)
	before := item.Clone()

	p, err := NewItemPatch(absentString(), absentString(), optional.Of(500.0), absentBool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Apply(item)

	if item.Price != 500 {
		t.Fatalf("expected price 500, got %v", item.Price)
	}
	before.Price = 500
	if !reflect.DeepEqual(item, before) {
		t.Fatalf("unsupplied fields changed:\n got  %+v\n want %+v", item, before)
	}
}

func TestItemPatch_ApplyClearsDescription(t *testing.T) {
	desc := Description("x")
	item := NewItem("a", &desc, 1, true)

	p, _ := NewItemPatch(absentString(), optional.Null[string](), absentFloat(), optional.Of(false))
	p.Apply(item)

	if item.Description != nil {
		t.Fatalf("expected nil description, got %q", *item.Description)
	}
	if item.Available {
		t.Fatal("expected available=false")
	}
}
