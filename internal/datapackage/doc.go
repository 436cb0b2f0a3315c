// Package datapackage describes the flat-file camera-trap data package: where
// each table lives, which columns it carries, and how rows are read from and
// written to CSV.
//
// Stages never touch encoding/csv directly. They read a Table, convert its
// records into the typed rows defined here (Deployment, Media, Observation,
// LabelRow, Detection) and write typed rows back. Columns a stage does not know
// about are carried through untouched in each row's Extra map.
package datapackage
