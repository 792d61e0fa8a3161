package businessflow

import (
	"fmt"
	"strconv"

	"github.com/amirphl/dispupr-numbering/app/dto"
	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	bastExportHeader = []string{
		"id", "bast_number", "project_name", "bast_date", "budget", "company_name",
		"registration_datetime", "user_id", "created_at",
	}
	contractExportHeader = []string{
		"id", "contract_number", "project_name", "contract_date", "location_code", "work_type",
		"procurement_type", "budget", "company_name", "registration_datetime", "user_id", "created_at",
	}
)

func exportFileName(document string, year *int) string {
	if year != nil {
		return fmt.Sprintf("%s_records_%d.xlsx", document, *year)
	}
	return fmt.Sprintf("%s_records_%s.xlsx", document, utils.UTCNowFormatCompact())
}

func renderBastWorkbook(items []dto.BastRecordItem) ([]byte, error) {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.BastNumber,
			r.ProjectName,
			r.BastDate,
			utils.Deref(r.Budget),
			utils.Deref(r.CompanyName),
			r.RegistrationDatetime,
			utils.Deref(r.UserID),
			r.CreatedAt,
		})
	}
	return renderWorkbook("BAST", bastExportHeader, rows)
}

func renderContractWorkbook(items []dto.ContractRecordItem) ([]byte, error) {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.ContractNumber,
			r.ProjectName,
			r.ContractDate,
			r.LocationCode,
			r.WorkType,
			r.ProcurementType,
			utils.Deref(r.Budget),
			utils.Deref(r.CompanyName),
			r.RegistrationDatetime,
			utils.Deref(r.UserID),
			r.CreatedAt,
		})
	}
	return renderWorkbook("Contracts", contractExportHeader, rows)
}

// renderWorkbook writes a single sheet with a header row followed by one row per record
func renderWorkbook(sheet string, header []string, rows [][]string) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for ri, record := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
