// Package contentstream splits decoded page content into operations.
//
// Each Operation carries the operator name (BT, Tf, TJ, re, f*, ...) and
// the operands that preceded it as core objects:
//
//	ops, err := contentstream.NewParser(data).Parse()
//
// Comments are skipped. Inline image data between ID and EI is not
// returned; the parser emits an EI operation once the image ends.
package contentstream
