// Package ocr recognizes words on rendered page surfaces and turns them
// into positioned text, giving image-only pages a selectable text layer.
//
// Recognition uses the Tesseract engine through gosseract and is compiled
// in only with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Tesseract must be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// Without the tag every [Client] operation returns [ErrOCRNotEnabled].
// [TextContent] is always available: it maps word boxes found on a
// surface back into PDF user space through the page viewport.
package ocr
