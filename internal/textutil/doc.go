// Package textutil provides the text matching helpers used when reading field
// spreadsheets and label sheets.
//
// Field sheets are typed by hand in spreadsheet tools, so header names and
// enumerated values arrive with inconsistent case, stray whitespace and
// occasionally decomposed Unicode. Fold and the helpers built on it give every
// package one comparison rule.
package textutil
