// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package registry holds the static catalog of explorable datasets.
//
// A Registry is built once at startup and is read-only afterwards, so it is
// safe for concurrent use without locking. Every dimension and measure a
// query may reference is listed here together with the SQL expression it
// stands for; nothing outside this catalog ever reaches a compiled query.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/validation"
)

// ErrDatasetNotFound is returned when a dataset id is not in the catalog.
var ErrDatasetNotFound = errors.New("dataset not found")

// DefaultDateDimension is the dimension whose expression doubles as the date
// column when a definition does not set DateColumn.
const DefaultDateDimension = "dt"

// forbiddenExprTokens never appear in a legitimate single expression.
var forbiddenExprTokens = []string{";", "--", "/*", "*/"}

// Field maps a public name to the SQL expression it is rendered as.
type Field struct {
	Name string
	Expr string
}

// Definition describes one dataset.
type Definition struct {
	ID         string
	Label      string
	Table      string
	DateColumn string
	Dimensions []Field
	Measures   []Field
}

// Dimension returns the expression for the named dimension.
func (d *Definition) Dimension(name string) (string, bool) {
	return lookup(d.Dimensions, name)
}

// Measure returns the expression for the named measure.
func (d *Definition) Measure(name string) (string, bool) {
	return lookup(d.Measures, name)
}

// DimensionNames returns dimension names in catalog order.
func (d *Definition) DimensionNames() []string {
	return names(d.Dimensions)
}

// MeasureNames returns measure names in catalog order.
func (d *Definition) MeasureNames() []string {
	return names(d.Measures)
}

func (d *Definition) clone() *Definition {
	c := *d
	c.Dimensions = append([]Field(nil), d.Dimensions...)
	c.Measures = append([]Field(nil), d.Measures...)
	return &c
}

func lookup(fields []Field, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Expr, true
		}
	}
	return "", false
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// Summary is the list_datasets entry.
type Summary struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Fields is the get_dataset_fields payload.
type Fields struct {
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
}

// Registry is the immutable dataset catalog.
type Registry struct {
	order []string
	defs  map[string]*Definition
}

// New validates defs and builds a registry. The definitions are copied;
// later changes to defs do not affect the registry.
func New(defs []Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, errors.New("registry: at least one dataset is required")
	}

	r := &Registry{
		order: make([]string, 0, len(defs)),
		defs:  make(map[string]*Definition, len(defs)),
	}
	for i := range defs {
		def := defs[i].clone()
		if err := normalize(def); err != nil {
			return nil, fmt.Errorf("registry: dataset %d (%q): %w", i, defs[i].ID, err)
		}
		if _, dup := r.defs[def.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate dataset id %q", def.ID)
		}
		r.order = append(r.order, def.ID)
		r.defs[def.ID] = def
	}
	return r, nil
}

// normalize checks a definition and fills in defaults.
func normalize(def *Definition) error {
	if !validation.IsFieldKey(def.ID) {
		return fmt.Errorf("invalid id %q", def.ID)
	}
	if def.Label == "" {
		def.Label = def.ID
	}
	if !validation.IsTableRef(def.Table) {
		return fmt.Errorf("invalid table reference %q", def.Table)
	}
	if len(def.Dimensions) == 0 {
		return errors.New("no dimensions")
	}
	if len(def.Measures) == 0 {
		return errors.New("no measures")
	}
	if err := checkFields("dimension", def.Dimensions); err != nil {
		return err
	}
	if err := checkFields("measure", def.Measures); err != nil {
		return err
	}

	if def.DateColumn == "" {
		expr, ok := def.Dimension(DefaultDateDimension)
		if !ok {
			return fmt.Errorf("date_column is required when there is no %q dimension", DefaultDateDimension)
		}
		def.DateColumn = expr
	}
	return checkExpr(def.DateColumn)
}

func checkFields(kind string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !validation.IsFieldKey(f.Name) {
			return fmt.Errorf("invalid %s name %q", kind, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate %s %q", kind, f.Name)
		}
		seen[f.Name] = true
		if err := checkExpr(f.Expr); err != nil {
			return fmt.Errorf("%s %q: %w", kind, f.Name, err)
		}
	}
	return nil
}

func checkExpr(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return errors.New("empty expression")
	}
	for _, tok := range forbiddenExprTokens {
		if strings.Contains(expr, tok) {
			return fmt.Errorf("expression %q contains %q", expr, tok)
		}
	}
	return nil
}

// List returns every dataset in catalog order.
func (r *Registry) List() []Summary {
	out := make([]Summary, len(r.order))
	for i, id := range r.order {
		out[i] = Summary{ID: id, Label: r.defs[id].Label}
	}
	return out
}

// Get returns a copy of the dataset definition.
func (r *Registry) Get(id string) (*Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, id)
	}
	return def.clone(), nil
}

// Has reports whether id is in the catalog.
func (r *Registry) Has(id string) bool {
	_, ok := r.defs[id]
	return ok
}

// Fields returns the dimension and measure names of a dataset in catalog order.
func (r *Registry) Fields(id string) (Fields, error) {
	def, ok := r.defs[id]
	if !ok {
		return Fields{}, fmt.Errorf("%w: %q", ErrDatasetNotFound, id)
	}
	return Fields{
		Dimensions: def.DimensionNames(),
		Measures:   def.MeasureNames(),
	}, nil
}

// DefaultDefinitions returns the built-in orders and livestream datasets.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:    "orders",
			Label: "Orders (Fact)",
			Table: "analytics.fact_orders",
			Dimensions: []Field{
				{Name: "dt", Expr: "CAST(order_ts AS DATE)"},
				{Name: "platform", Expr: "platform"},
				{Name: "product_name", Expr: "product_name"},
			},
			Measures: []Field{
				{Name: "revenue", Expr: "SUM(revenue)"},
				{Name: "orders", Expr: "COUNT(1)"},
			},
		},
		{
			ID:    "livestream",
			Label: "Livestream (Fact)",
			Table: "analytics.fact_livestream",
			Dimensions: []Field{
				{Name: "dt", Expr: "CAST(live_date AS DATE)"},
				{Name: "host", Expr: "host"},
				{Name: "platform", Expr: "platform"},
			},
			Measures: []Field{
				{Name: "revenue", Expr: "SUM(revenue)"},
				{Name: "sessions", Expr: "COUNT(1)"},
			},
		},
	}
}

// FromConfig builds the registry from the datasets configuration section,
// falling back to DefaultDefinitions when none are configured.
func FromConfig(datasets []config.DatasetConfig) (*Registry, error) {
	if len(datasets) == 0 {
		return New(DefaultDefinitions())
	}

	defs := make([]Definition, len(datasets))
	for i, ds := range datasets {
		if verr := validation.ValidateStruct(&ds); verr != nil {
			return nil, fmt.Errorf("registry: dataset %d (%q): %w", i, ds.ID, verr)
		}
		defs[i] = Definition{
			ID:         ds.ID,
			Label:      ds.Label,
			Table:      ds.Table,
			DateColumn: ds.DateColumn,
			Dimensions: fieldsFromConfig(ds.Dimensions),
			Measures:   fieldsFromConfig(ds.Measures),
		}
	}
	return New(defs)
}

func fieldsFromConfig(in []config.FieldConfig) []Field {
	out := make([]Field, len(in))
	for i, f := range in {
		out[i] = Field{Name: f.Name, Expr: f.Expr}
	}
	return out
}
