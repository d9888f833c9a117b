package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"legaldata-backend/models"

	"github.com/xuri/excelize/v2"
)

// RowError reports a validation failure for one workbook row. Row numbers
// are 1-based spreadsheet rows, so the first data row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// maxCaseColumns bounds the case_title_N / case_outcome_N / case_impact_N
// column triples scanned per row.
const maxCaseColumns = 5

// sheetRows reads the first sheet of a workbook and returns the normalized
// header index and the data rows.
func sheetRows(r io.Reader) (map[string]int, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("workbook is empty")
	}

	// Column names are case-insensitive
	headers := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}

	return headers, rows[1:], nil
}

// cell returns the trimmed value of a named column in a row, or "" when the
// column is absent or the row is short.
func cell(headers map[string]int, row []string, name string) string {
	idx, ok := headers[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseInt accepts plain integers and the float renderings spreadsheet
// tools are fond of ("12.0").
func parseInt(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func requireColumns(headers map[string]int, required []string) error {
	var missing []string
	for _, col := range required {
		if _, ok := headers[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ParseAttorneyWorkbook validates an attorney workbook row by row. Only
// name, seniority and years_of_experience are required; email is generated
// when blank, practice areas and cases are optional. One invalid row never
// blocks the others.
func ParseAttorneyWorkbook(r io.Reader) ([]models.AttorneyInput, []RowError, error) {
	headers, rows, err := sheetRows(r)
	if err != nil {
		return nil, nil, err
	}

	if err := requireColumns(headers, []string{"name", "seniority", "years_of_experience"}); err != nil {
		return nil, nil, err
	}

	var inputs []models.AttorneyInput
	var rowErrors []RowError

	for i, row := range rows {
		rowNum := i + 2

		name := cell(headers, row, "name")
		if name == "" {
			rowErrors = append(rowErrors, RowError{rowNum, "name is required"})
			continue
		}

		seniority := cell(headers, row, "seniority")
		if seniority == "" {
			rowErrors = append(rowErrors, RowError{rowNum, "seniority is required"})
			continue
		}

		yearsRaw := cell(headers, row, "years_of_experience")
		yearsExp, err := parseInt(yearsRaw)
		if err != nil {
			rowErrors = append(rowErrors, RowError{rowNum, "years_of_experience must be a number"})
			continue
		}

		input := models.AttorneyInput{
			Name:              name,
			Email:             cell(headers, row, "email"),
			Seniority:         seniority,
			YearsOfExperience: yearsExp,
			PracticeAreas:     parsePracticeAreas(headers, row, yearsExp),
			MajorCases:        parseMajorCases(headers, row),
		}

		if jurs := cell(headers, row, "jurisdictions"); jurs != "" {
			for _, j := range strings.Split(jurs, ";") {
				if j = strings.TrimSpace(j); j != "" {
					input.Jurisdictions = append(input.Jurisdictions, j)
				}
			}
		}

		if errs := input.Validate(); len(errs) > 0 {
			rowErrors = append(rowErrors, RowError{rowNum, errs.Error()})
			continue
		}

		inputs = append(inputs, input)
	}

	return inputs, rowErrors, nil
}

// parsePracticeAreas scans the practice_area_N column triples. Relaxed like
// the rest of bulk ingest: an unknown proficiency falls back to
// Intermediate and years in practice are capped at total experience.
func parsePracticeAreas(headers map[string]int, row []string, yearsExp int) models.PracticeAreas {
	areas := make(models.PracticeAreas, 0)

	for n := 1; n <= models.MaxPracticeAreas; n++ {
		area := cell(headers, row, fmt.Sprintf("practice_area_%d", n))
		if area == "" {
			continue
		}

		proficiency := models.ProficiencyIntermediate
		if p, ok := models.ParseProficiency(cell(headers, row, fmt.Sprintf("proficiency_%d", n))); ok {
			proficiency = p
		}

		years := 0
		if y, err := parseInt(cell(headers, row, fmt.Sprintf("years_in_practice_%d", n))); err == nil {
			years = y
		}
		if years > yearsExp {
			years = yearsExp
		}
		if years < 0 {
			years = 0
		}

		areas = append(areas, models.PracticeArea{
			Area:            area,
			Proficiency:     proficiency,
			YearsInPractice: years,
		})
	}

	return areas
}

// parseMajorCases scans the case_title_N column triples. An unknown impact
// defaults to Medium.
func parseMajorCases(headers map[string]int, row []string) models.MajorCases {
	cases := make(models.MajorCases, 0)

	for n := 1; n <= maxCaseColumns; n++ {
		title := cell(headers, row, fmt.Sprintf("case_title_%d", n))
		if title == "" {
			continue
		}

		impact := models.ImpactMedium
		if imp, ok := models.ParseImpact(cell(headers, row, fmt.Sprintf("case_impact_%d", n))); ok {
			impact = imp
		}

		cases = append(cases, models.MajorCase{
			Title:   title,
			Outcome: cell(headers, row, fmt.Sprintf("case_outcome_%d", n)),
			Impact:  impact,
		})
	}

	return cases
}

// ParseSourceWorkbook validates a public-source workbook row by row. Only
// title and url are required; rows carrying a summary are stored already
// enriched.
func ParseSourceWorkbook(r io.Reader) ([]models.SourceInput, []RowError, error) {
	headers, rows, err := sheetRows(r)
	if err != nil {
		return nil, nil, err
	}

	if err := requireColumns(headers, []string{"title", "url"}); err != nil {
		return nil, nil, err
	}

	var inputs []models.SourceInput
	var rowErrors []RowError

	for i, row := range rows {
		rowNum := i + 2

		input := models.SourceInput{
			Title:         cell(headers, row, "title"),
			URL:           cell(headers, row, "url"),
			Source:        cell(headers, row, "source"),
			PublishedDate: cell(headers, row, "published_date"),
			RiskArea:      cell(headers, row, "risk_area"),
			Jurisdiction:  cell(headers, row, "jurisdiction"),
			ImpactLevel:   cell(headers, row, "impact_level"),
			Summary:       cell(headers, row, "summary"),
		}

		if input.Title == "" && input.URL == "" {
			rowErrors = append(rowErrors, RowError{rowNum, "title and URL are required"})
			continue
		}

		if errs := input.Validate(); len(errs) > 0 {
			rowErrors = append(rowErrors, RowError{rowNum, errs.Error()})
			continue
		}

		inputs = append(inputs, input)
	}

	return inputs, rowErrors, nil
}
