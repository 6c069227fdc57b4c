package mockexchange

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FixtureError reports a fixture field that failed validation.
type FixtureError struct {
	ProductID string
	Field     string
	Cause     error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("fixture %s: invalid %s: %v", e.ProductID, e.Field, e.Cause)
}

func (e *FixtureError) Unwrap() error {
	return e.Cause
}

// fixtureFile is the YAML document shape accepted by LoadFixtures:
//
//	products:
//	  - id: BTC-USD
//	    base_currency: BTC
//	    quote_currency: USD
//	    quote_increment: "0.01"
//	    base_price: "50000.00"
//	currencies:
//	  - id: BTC
//	    name: Bitcoin
//	    min_size: "0.00000001"
type fixtureFile struct {
	Products   []Product  `yaml:"products"`
	Currencies []Currency `yaml:"currencies"`
}

// LoadFixtures reads a YAML fixture document and builds a dataset from it.
// Omitted product fields fall back to sensible defaults; base_price and
// quote_increment must parse as decimals.
func LoadFixtures(r io.Reader) (*Dataset, error) {
	var file fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	if len(file.Products) == 0 {
		return nil, fmt.Errorf("fixtures declare no products")
	}

	for i := range file.Products {
		applyProductDefaults(&file.Products[i])
	}
	if len(file.Currencies) == 0 {
		file.Currencies = currenciesFromProducts(file.Products)
	}

	return NewDataset(file.Products, file.Currencies)
}

// LoadFixturesFile reads fixtures from a file path.
func LoadFixturesFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}

func applyProductDefaults(p *Product) {
	if p.BaseIncrement == "" {
		p.BaseIncrement = "0.00000001"
	}
	if p.QuoteIncrement == "" {
		p.QuoteIncrement = "0.01"
	}
	if p.DisplayName == "" {
		p.DisplayName = p.BaseCurrency + "/" + p.QuoteCurrency
	}
	if p.Status == "" {
		p.Status = "online"
	}
}

// currenciesFromProducts synthesizes the currency list when fixtures omit
// one, so /currencies always answers something consistent with /products.
func currenciesFromProducts(products []Product) []Currency {
	seen := make(map[string]bool)
	var currencies []Currency
	for _, p := range products {
		for _, id := range []string{p.BaseCurrency, p.QuoteCurrency} {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			currencies = append(currencies, Currency{ID: id, Name: id, MinSize: "0.00000001"})
		}
	}
	return currencies
}
