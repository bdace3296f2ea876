package feedsync

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalProduct_Validate(t *testing.T) {
	valid := func() *CanonicalProduct {
		return &CanonicalProduct{
			ExternalID: "1001",
			Name:       "Trekking Pole",
			Price:      decimal.NewFromInt(150),
			TotalStock: 4,
		}
	}
	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(p *CanonicalProduct)
	}{
		{"blank external id", func(p *CanonicalProduct) { p.ExternalID = " " }},
		{"blank name", func(p *CanonicalProduct) { p.Name = "" }},
		{"negative price", func(p *CanonicalProduct) { p.Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(p *CanonicalProduct) { p.TotalStock = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProduct)
		})
	}
}

func TestMapResult(t *testing.T) {
	p := &CanonicalProduct{ExternalID: "1"}
	assert.Equal(t, MapProduct, Mapped(p).Kind)
	assert.Same(t, p, Mapped(p).Product)

	skip := Skipped("no name")
	assert.Equal(t, MapSkip, skip.Kind)
	assert.Equal(t, "no name", skip.Reason)

	boom := errors.New("boom")
	failed := Failed(boom)
	assert.Equal(t, MapError, failed.Kind)
	assert.Equal(t, "error", failed.Kind.String())
	assert.ErrorIs(t, failed.Err, boom)
}
