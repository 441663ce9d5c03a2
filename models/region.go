package models

import "slices"

// Region is an EU region together with its municipalities
type Region struct {
	Name           string
	Municipalities []string
}

// euRegions is never mutated; Regions hands out copies.
var euRegions = []Region{
	{Name: "Bavaria (DE)", Municipalities: []string{"Munich", "Nuremberg", "Augsburg"}},
	{Name: "Île-de-France (FR)", Municipalities: []string{"Paris", "Boulogne-Billancourt", "Saint-Denis"}},
	{Name: "Lombardy (IT)", Municipalities: []string{"Milan", "Bergamo", "Brescia"}},
	{Name: "Andalusia (ES)", Municipalities: []string{"Seville", "Málaga", "Granada"}},
}

// Regions returns a copy of the region lookup table in its fixed order
func Regions() []Region {
	out := make([]Region, len(euRegions))
	for i, r := range euRegions {
		out[i] = Region{Name: r.Name, Municipalities: slices.Clone(r.Municipalities)}
	}
	return out
}

// MunicipalitiesOf returns the municipalities of the named region
func MunicipalitiesOf(region string) ([]string, bool) {
	for _, r := range euRegions {
		if r.Name == region {
			return slices.Clone(r.Municipalities), true
		}
	}
	return nil, false
}

// IsKnownLocation reports whether municipality belongs to region in the lookup table
func IsKnownLocation(region, municipality string) bool {
	for _, r := range euRegions {
		if r.Name == region {
			return slices.Contains(r.Municipalities, municipality)
		}
	}
	return false
}
