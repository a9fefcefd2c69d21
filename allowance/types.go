// Package allowance implements the CSV/Excel to allowance-table parser
// that feeds the document renderers.
package allowance

import (
	"strconv"
	"strings"
)

// RateRow holds the eight contribution-tier amounts for one age band.
// Values are kept as the free-form text found in the source file; the
// renderers apply currency formatting on output.
type RateRow struct {
	EE    string
	ES    string
	EC1   string
	EC2   string
	ECmax string
	FA1   string
	FA2   string
	FAmax string
}

// Field returns the value of a rate field by its column name.
func (r RateRow) Field(name string) string {
	switch name {
	case "EE":
		return r.EE
	case "ES":
		return r.ES
	case "EC1":
		return r.EC1
	case "EC2":
		return r.EC2
	case "ECmax":
		return r.ECmax
	case "FA1":
		return r.FA1
	case "FA2":
		return r.FA2
	case "FAmax":
		return r.FAmax
	}
	return ""
}

// Table maps class name -> age-band key -> RateRow. Age-band keys are
// "18".."63" plus the open-ended "64+" bucket.
type Table map[string]map[string]RateRow

// Row returns the rate row for (class, ageBand). Missing entries come
// back as a zero RateRow so absent ages render as blank cells.
func (t Table) Row(class, ageBand string) RateRow {
	return t[class][ageBand]
}

// RateFields lists the eight rate columns in render order. Table column
// 1 maps to RateFields[0] and so on.
var RateFields = []string{"EE", "ES", "EC1", "EC2", "ECmax", "FA1", "FA2", "FAmax"}

// TierLabels are the column headers shown in the rendered document,
// aligned index-for-index with RateFields.
var TierLabels = []string{
	"You",
	"You + spouse",
	"You + 1 child",
	"You + 2 children",
	"You + 3 (or more) children",
	"You + spouse + 1 child",
	"You + spouse + 2 children",
	"You + spouse + 3 (or more) children",
}

// minAge and maxAge bound the single-year age bands; ages at or above
// maxAge+1 collapse into the "64+" bucket.
const (
	minAge = 18
	maxAge = 63
)

// OverflowBand is the final open-ended age band.
const OverflowBand = "64+"

// AgeBands returns every age band in render order: "18".."63" then "64+".
func AgeBands() []string {
	bands := make([]string, 0, maxAge-minAge+2)
	for age := minAge; age <= maxAge; age++ {
		bands = append(bands, strconv.Itoa(age))
	}
	return append(bands, OverflowBand)
}

// Anchor derives the navigation anchor for a class name: lower-cased,
// with spaces and hyphens replaced by underscores.
func Anchor(class string) string {
	a := strings.ToLower(class)
	a = strings.ReplaceAll(a, " ", "_")
	a = strings.ReplaceAll(a, "-", "_")
	return a
}
