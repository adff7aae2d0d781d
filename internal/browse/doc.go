// Package browse produces live directory listings for library roots. There
// is no index or database: each listing reads the directory at request time,
// skips hidden entries, classifies files by extension, and sorts folders
// first. The package also hosts the stats walker that feeds the per-library
// metrics gauges.
package browse
