// Package pkgmask classifies and masks values that look like PII or secrets.
//
// Classification is a case-insensitive substring match against a configured
// set of sensitive names (password, token, card, and so on). Masking keeps the
// first and last two characters of long values and replaces the middle with
// asterisks, so an operator can still correlate a value across records without
// seeing its content. Value length is deliberately not hidden.
package pkgmask
