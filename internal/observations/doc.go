// Package observations generates one media-level observation per linked media
// row, plus the optional annotation template a human reviewer fills in.
package observations
