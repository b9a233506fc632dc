package fare

import (
	"strings"

	"bus-booking/models"
)

// Catalog is the fixed list of promotional offers. It is built once and never
// modified.
type Catalog struct {
	offers []models.PromoOffer
}

func NewCatalog(offers ...models.PromoOffer) *Catalog {
	return &Catalog{offers: append([]models.PromoOffer(nil), offers...)}
}

// DefaultCatalog holds the offers shown on the offers page.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		models.PromoOffer{
			Code:          "FIRST50",
			Title:         "50% OFF up to ₹100",
			Description:   "For your first booking on RideSphere",
			Percentage:    50,
			MaxDiscount:   100,
			FirstTimeOnly: true,
		},
		models.PromoOffer{
			Code:        "BUS20",
			Title:       "20% OFF up to ₹80",
			Description: "Valid on any bus booking",
			Percentage:  20,
			MaxDiscount: 80,
		},
		models.PromoOffer{
			Code:        "FLAT50",
			Title:       "Flat ₹50 OFF",
			Description: "Minimum payable ₹200",
			Flat:        50,
			MinAmount:   200,
		},
		models.PromoOffer{
			Code:        "FEST100",
			Title:       "₹100 OFF",
			Description: "On orders above ₹300",
			Flat:        100,
			MinAmount:   300,
		},
	)
}

// Lookup matches code case-insensitively.
func (c *Catalog) Lookup(code string) (models.PromoOffer, bool) {
	code = strings.TrimSpace(code)
	for _, o := range c.offers {
		if strings.EqualFold(o.Code, code) {
			return o, true
		}
	}
	return models.PromoOffer{}, false
}

// Offers returns a copy of the catalog in display order.
func (c *Catalog) Offers() []models.PromoOffer {
	return append([]models.PromoOffer(nil), c.offers...)
}
