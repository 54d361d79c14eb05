// Package report renders the merged record set into the tagging workbook.
// It is pure presentation: the extraction core hands it plain structured
// data and it owns sheets, styling, and bytes.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/amendments"
	"github.com/tenderworks/tendertag/internal/entity"
)

// Meta carries run identity for the TenderMeta sheet.
type Meta struct {
	RunID          uuid.UUID
	BuiltAt        time.Time
	SourceCount    int
	AmendmentCount int
}

// Builder produces XLSX bytes for a run.
type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build writes the standard sheets (AI_Tagging_Master, BID_INFO,
// AmendmentTracker, TenderMeta). When templatePath is set, the template's
// sheet structure is cloned first as empty sheets, names clamped to the
// XLSX limit, so downstream consumers keep their expected schema.
func (b *Builder) Build(meta Meta, records []entity.Record, bidInfo []entity.BidInfoEntry, amends []amendments.Info, templatePath string) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if templatePath != "" {
		if err := cloneTemplateSheets(f, templatePath); err != nil {
			return nil, err
		}
	}

	if err := b.writeMaster(f, records); err != nil {
		return nil, err
	}
	if err := b.writeBidInfo(f, bidInfo); err != nil {
		return nil, err
	}
	if err := b.writeAmendments(f, amends); err != nil {
		return nil, err
	}
	if err := b.writeMeta(f, meta); err != nil {
		return nil, err
	}

	// The workbook starts with a default sheet we never use.
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}
	if idx, _ := f.GetSheetIndex(constants.SheetMaster); idx != -1 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	b.logger.Info("report.xlsx.ok",
		"run_id", meta.RunID.String(),
		"rows", len(records),
		"bid_info", len(bidInfo),
		"amendments", len(amends),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BuildFile renders the workbook and writes it to outPath.
func (b *Builder) BuildFile(meta Meta, records []entity.Record, bidInfo []entity.BidInfoEntry, amends []amendments.Info, templatePath, outPath string) error {
	out, err := b.Build(meta, records, bidInfo, amends, templatePath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

func cloneTemplateSheets(f *excelize.File, templatePath string) error {
	tpl, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("open template %s: %w", templatePath, err)
	}
	defer func() { _ = tpl.Close() }()

	for _, name := range tpl.GetSheetList() {
		safe := constants.ClampSheetName(name)
		if err := ensureSheet(f, safe); err != nil {
			return err
		}
	}
	return nil
}

func ensureSheet(f *excelize.File, sheet string) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func (b *Builder) writeMaster(f *excelize.File, records []entity.Record) error {
	const sheet = constants.SheetMaster
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}
	writeRow(f, sheet, 1, []any{
		"Section", "Clause/Ref", "Parameter", "Value", "Unit", "Notes", "SourcePage", "SourceDoc",
	})
	row := 2
	for _, r := range records {
		writeRow(f, sheet, row, []any{
			r.Section, r.ClauseRef, r.Parameter, r.Value, r.Unit, r.Notes, r.SourcePage, r.SourceDoc,
		})
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 18) // section
	_ = f.SetColWidth(sheet, "B", "B", 14) // clause
	_ = f.SetColWidth(sheet, "C", "C", 28) // parameter
	_ = f.SetColWidth(sheet, "D", "D", 40) // value
	_ = f.SetColWidth(sheet, "F", "F", 32) // notes
	_ = f.SetColWidth(sheet, "H", "H", 28) // source doc
	return nil
}

func (b *Builder) writeBidInfo(f *excelize.File, entries []entity.BidInfoEntry) error {
	const sheet = constants.SheetBidInfo
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}
	writeRow(f, sheet, 1, []any{"Field", "Value"})
	row := 2
	for _, e := range entries {
		writeRow(f, sheet, row, []any{e.Field, e.Value})
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 26)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	return nil
}

func (b *Builder) writeAmendments(f *excelize.File, amends []amendments.Info) error {
	const sheet = constants.SheetAmendments
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}
	writeRow(f, sheet, 1, []any{"AmendmentType", "FileName", "Date", "Notes", "Pages"})
	row := 2
	for _, a := range amends {
		writeRow(f, sheet, row, []any{a.Type, a.FileName, a.Date, a.Notes, a.Pages})
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func (b *Builder) writeMeta(f *excelize.File, meta Meta) error {
	const sheet = constants.SheetMeta
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}
	built := meta.BuiltAt
	if built.IsZero() {
		built = time.Now()
	}
	writeRow(f, sheet, 1, []any{"Key", "Value"})
	writeRow(f, sheet, 2, []any{"Build", fmt.Sprintf("AI_Tagging - built %s", built.Format("2006-01-02 15:04:05"))})
	writeRow(f, sheet, 3, []any{"RunID", meta.RunID.String()})
	writeRow(f, sheet, 4, []any{"SourceCount", fmt.Sprintf("%d", meta.SourceCount)})
	writeRow(f, sheet, 5, []any{"AmendmentsCount", fmt.Sprintf("%d", meta.AmendmentCount)})
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 46)
	return nil
}
