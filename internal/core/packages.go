package core

import (
	"errors"
	"strings"
)

// Package is a menu tier offered on corporate bills.
type Package struct {
	Name  string `json:"name"`
	Price Amount `json:"price"`
}

// Packages lists the default tiers in display order.
var Packages = []Package{
	{Name: "Economy", Price: 150},
	{Name: "Standard", Price: 250},
	{Name: "Premium", Price: 450},
}

// DefaultPackage is preselected on new corporate rows.
const DefaultPackage = "Standard"

var ErrUnknownPackage = errors.New("unknown package")

// LookupPackage finds a tier by name, ignoring case and surrounding space.
func LookupPackage(name string) (Package, bool) {
	for _, p := range Packages {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Package{}, false
}
