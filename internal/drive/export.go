package drive

import (
	"path/filepath"
	"strings"
)

// MimeTypeOctetStream is the generic binary MIME type. A Content-Type header
// carrying it is treated as "no declared type".
const MimeTypeOctetStream = "application/octet-stream"

// Office Open XML MIME types, both as export targets and as inputs to the
// office text extractor.
const (
	MimeTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeTypePdf  = "application/pdf"
	MimeTypeCsv  = "text/csv"
)

type exportTarget struct {
	mime string
	ext  string
}

// defaultExports maps native Google types to their default binary export.
var defaultExports = map[string]exportTarget{
	MimeTypeDocument:     {MimeTypePdf, ".pdf"},
	MimeTypeSpreadsheet:  {MimeTypeXlsx, ".xlsx"},
	MimeTypePresentation: {MimeTypePdf, ".pdf"},
}

// altExports maps native Google types to the caller-selectable alternates.
var altExports = map[string]map[string]exportTarget{
	MimeTypeDocument:     {"docx": {MimeTypeDocx, ".docx"}},
	MimeTypeSpreadsheet:  {"csv": {MimeTypeCsv, ".csv"}},
	MimeTypePresentation: {"pptx": {MimeTypePptx, ".pptx"}},
}

// textExports maps native Google types to their plain-text export, used when
// reading content inline rather than producing a download.
var textExports = map[string]string{
	MimeTypeDocument:     "text/plain",
	MimeTypeSpreadsheet:  "text/csv",
	MimeTypePresentation: "text/plain",
}

// TextExportMime returns the plain-text export MIME type for a native Google
// document type, or "" if the type is downloaded as-is.
func TextExportMime(sourceMime string) string {
	return textExports[sourceMime]
}

// PlanExport decides how an item's content is materialized for download.
//
// Native document/spreadsheet/presentation types export to PDF/XLSX/PDF by
// default; requestedFormat selects a supported alternate (docx, csv, pptx).
// Any other type downloads as-is. The output filename gains the target
// extension only when the current name lacks it; the base name is preserved.
// Deterministic: identical inputs always produce identical plans.
func PlanExport(sourceMime, requestedFormat, defaultName string) ExportPlan {
	plan := ExportPlan{
		SourceMime:      sourceMime,
		RequestedFormat: requestedFormat,
		OutputMime:      sourceMime,
		OutputName:      defaultName,
	}

	target, native := defaultExports[sourceMime]
	if !native {
		return plan
	}

	if alt, ok := altExports[sourceMime][requestedFormat]; ok {
		target = alt
	}

	plan.ExportMime = target.mime
	plan.OutputMime = target.mime
	plan.OutputName = withExtension(defaultName, target.ext)
	return plan
}

// withExtension appends or replaces the filename extension, keeping the stem.
func withExtension(name, ext string) string {
	if strings.HasSuffix(name, ext) {
		return name
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return stem + ext
}
