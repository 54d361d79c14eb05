package constants

// Standard sheet names in the generated workbook.
const (
	SheetMaster     = "AI_Tagging_Master"
	SheetBidInfo    = "BID_INFO"
	SheetAmendments = "AmendmentTracker"
	SheetMeta       = "TenderMeta"
)

// MaxSheetNameLen is the XLSX limit; cloned template sheet names are clamped.
const MaxSheetNameLen = 31

// ClampSheetName truncates a sheet name to the XLSX limit.
func ClampSheetName(name string) string {
	if len(name) > MaxSheetNameLen {
		return name[:MaxSheetNameLen]
	}
	return name
}
