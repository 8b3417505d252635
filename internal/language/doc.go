// Package language provides language code normalization and mapping.
//
// Submission input, transcript detection, and voice pool lookup all key on
// ISO 639-1 codes; conversions from 3-letter codes and full names are
// consolidated here.
package language
