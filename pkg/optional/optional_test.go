package optional_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ghuser/itemstore/pkg/optional"
)

type patch struct {
	Name  optional.Value[string]  `json:"name"`
	Price optional.Value[float64] `json:"price"`
}

func TestUnmarshal_AbsentNullSet(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"name":null,"price":12.5}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Name.IsPresent() || !p.Name.IsNull() {
		t.Errorf("name: expected present+null, got present=%v null=%v", p.Name.IsPresent(), p.Name.IsNull())
	}
	price, ok := p.Price.Get()
	if !ok || price != 12.5 {
		t.Errorf("price: got (%v, %v), want (12.5, true)", price, ok)
	}
}

func TestUnmarshal_EmptyObjectLeavesAllAbsent(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Name.IsPresent() || p.Price.IsPresent() {
		t.Fatalf("expected all fields absent, got %+v", p)
	}
}

func TestUnmarshal_TypeMismatch(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"price":"free"}`), &p); err == nil {
		t.Fatal("expected error for string price")
	}
}

func TestMarshal(t *testing.T) {
	out, err := json.Marshal(patch{Name: optional.Of("lamp"), Price: optional.Null[float64]()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"name":"lamp","price":null}` {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestValidatable(t *testing.T) {
	if optional.Null[string]().Validatable() != nil {
		t.Error("null value should not be validatable")
	}
	if (optional.Value[string]{}).Validatable() != nil {
		t.Error("absent value should not be validatable")
	}
	if optional.Of("x").Validatable() != "x" {
		t.Error("set value should expose inner value")
	}
}

func TestMap(t *testing.T) {
	double := func(f float64) (float64, error) { return f * 2, nil }

	got, err := optional.Map(optional.Of(2.0), double)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := got.Get(); v != 4 {
		t.Errorf("expected 4, got %v", v)
	}

	absent, _ := optional.Map(optional.Value[float64]{}, double)
	if absent.IsPresent() {
		t.Error("absent must stay absent")
	}

	null, _ := optional.Map(optional.Null[float64](), double)
	if !null.IsNull() {
		t.Error("null must stay null")
	}

	boom := errors.New("boom")
	if _, err := optional.Map(optional.Of(1.0), func(float64) (float64, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
