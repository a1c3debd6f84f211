package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".xlsx", ".xlsm")
}

// Load reads the selected sheet (the first by default). The first row is the
// header; missing cells decode as "".
func (xlsxLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Path: path, Format: "xlsx", Err: ErrEmpty}
	}
	sheet := sheets[0]
	if opt.SheetName != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &DecodeError{Path: path, Format: "xlsx",
				Err: fmt.Errorf("sheet %q not found; available sheets: %s", opt.SheetName, strings.Join(sheets, ", "))}
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DecodeError{Path: path, Format: "xlsx", Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return dataset.New(nil, nil), nil
	}
	return buildDataset(rows[0], rows[1:]), nil
}

// Sheets lists the sheet names of a workbook in order.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Format: "xlsx", Err: err}
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
