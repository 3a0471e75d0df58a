// Package catalog reads and writes the tariff table and seed appliance list
// used to start new sessions.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"listrik/internal/core"
)

// Catalog is the YAML representation of a tariff table plus seed appliances.
type Catalog struct {
	DefaultClass string             `yaml:"default_class"`
	Tariffs      map[string]float64 `yaml:"tariffs"`
	Appliances   []Appliance        `yaml:"appliances"`
}

// Appliance is one seed entry.
type Appliance struct {
	Name        string  `yaml:"name"`
	Units       int     `yaml:"units"`
	Watts       float64 `yaml:"watts"`
	Class       string  `yaml:"class"`
	HoursPerDay float64 `yaml:"hours_per_day"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	t := core.DefaultTariffs()
	c := &Catalog{DefaultClass: t.Default, Tariffs: t.Prices}
	for _, in := range core.DefaultAppliances() {
		c.Appliances = append(c.Appliances, Appliance{
			Name:        in.Name,
			Units:       in.Units,
			Watts:       in.WattsPerUnit,
			Class:       in.TariffClass,
			HoursPerDay: in.HoursPerDay,
		})
	}
	return c
}

// Load reads a catalog file. An empty path or a missing file yields the built-in
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if len(c.Tariffs) == 0 {
		def := Default()
		c.Tariffs = def.Tariffs
		if c.DefaultClass == "" {
			c.DefaultClass = def.DefaultClass
		}
	}
	if c.DefaultClass == "" {
		c.DefaultClass = core.DefaultTariffClass
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// Save writes the catalog as YAML, creating the parent directory if needed.
func Save(path string, c *Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing catalog file: %w", err)
	}
	return nil
}

// Validate reports every problem in the catalog at once.
func (c *Catalog) Validate() error {
	var problems []string

	if _, ok := c.Tariffs[c.DefaultClass]; !ok {
		problems = append(problems, fmt.Sprintf("default class %q has no tariff", c.DefaultClass))
	}
	for _, class := range slices.Sorted(maps.Keys(c.Tariffs)) {
		price := c.Tariffs[class]
		if strings.TrimSpace(class) == "" {
			problems = append(problems, "tariff class name cannot be empty")
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			problems = append(problems, fmt.Sprintf("tariff %q must have a positive price, got %v", class, price))
		}
	}
	for i, a := range c.Appliances {
		if err := a.input().Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("appliance %d (%s): %v", i+1, a.Name, err))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// TariffTable converts the catalog prices into a core tariff table.
func (c *Catalog) TariffTable() core.TariffTable {
	return core.TariffTable{Default: c.DefaultClass, Prices: c.Tariffs}.Clone()
}

// Seed returns the appliance inputs in file order.
func (c *Catalog) Seed() []core.ApplianceInput {
	out := make([]core.ApplianceInput, 0, len(c.Appliances))
	for _, a := range c.Appliances {
		out = append(out, a.input())
	}
	return out
}

// NewLedger builds a ledger priced and seeded from the catalog.
func (c *Catalog) NewLedger() (*core.Ledger, error) {
	return core.NewSeededLedger(c.Seed(), core.WithTariffs(c.TariffTable()))
}

func (a Appliance) input() core.ApplianceInput {
	return core.ApplianceInput{
		Name:         a.Name,
		Units:        a.Units,
		WattsPerUnit: a.Watts,
		TariffClass:  a.Class,
		HoursPerDay:  a.HoursPerDay,
	}
}
