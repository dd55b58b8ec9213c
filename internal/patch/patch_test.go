package patch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type body struct {
	Name     Field[string]          `json:"name"`
	Category Field[uint]            `json:"category_id"`
	Stock    Field[int]             `json:"stock_quantity"`
	Price    Field[decimal.Decimal] `json:"price"`
}

func TestUnmarshalDistinguishesAbsentNullAndValue(t *testing.T) {
	var b body
	if err := json.Unmarshal([]byte(`{"name":"Widget","category_id":null}`), &b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !b.Name.Present() || b.Name.Value != "Widget" {
		t.Errorf("name = %+v, want set to Widget", b.Name)
	}
	if !b.Category.Set || !b.Category.Null || b.Category.Ptr() != nil {
		t.Errorf("category = %+v, want explicit null", b.Category)
	}
	if b.Stock.Set {
		t.Errorf("stock = %+v, want absent", b.Stock)
	}
}

func TestUnmarshalTypeError(t *testing.T) {
	var b body
	if err := json.Unmarshal([]byte(`{"stock_quantity":"lots"}`), &b); err == nil {
		t.Fatal("Unmarshal of a string into an int field succeeded")
	}
}

func TestUnmarshalNamesField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"int from string", `{"stock_quantity":"lots"}`, "stock_quantity"},
		{"decimal from word", `{"price":"abc"}`, "price"},
		{"decimal from bool", `{"price":true}`, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			err := json.Unmarshal([]byte(tt.input), &b)
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				t.Fatalf("err = %v (%T), want *json.UnmarshalTypeError", err, err)
			}
			if typeErr.Field != tt.field {
				t.Errorf("field = %q, want %q", typeErr.Field, tt.field)
			}
		})
	}

	var b body
	if err := json.Unmarshal([]byte(`{"price":"9.99"}`), &b); err != nil {
		t.Fatalf("Unmarshal valid price: %v", err)
	}
	if !b.Price.Value.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("price = %s", b.Price.Value)
	}
}

func TestConstructors(t *testing.T) {
	if f := Of(3); !f.Present() || *f.Ptr() != 3 {
		t.Errorf("Of(3) = %+v", f)
	}
	if f := Null[int](); f.Present() || !f.Set {
		t.Errorf("Null() = %+v", f)
	}
}
