package table

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// workbook is the subset of an .xlsx package needed to pull cell text out of
// one worksheet.
type workbook struct {
	path   string
	zr     *zip.ReadCloser
	sheets []wbSheet
	rels   map[string]string
	shared []string
}

type wbSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"`
}

type sharedItem struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (s sharedItem) text() string {
	if len(s.Runs) == 0 {
		return s.T
	}
	var b strings.Builder
	b.WriteString(s.T)
	for _, r := range s.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

type sheetCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline struct {
		T string `xml:"t"`
	} `xml:"is"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

func openWorkbook(p string) (*workbook, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", p, err)
	}
	wb := &workbook{path: p, zr: zr, rels: map[string]string{}}

	var book struct {
		Sheets []wbSheet `xml:"sheets>sheet"`
	}
	if err := wb.decode("xl/workbook.xml", &book); err != nil {
		zr.Close()
		return nil, err
	}
	wb.sheets = book.Sheets

	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := wb.decode("xl/_rels/workbook.xml.rels", &rels); err != nil {
		zr.Close()
		return nil, err
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			wb.rels[r.ID] = r.Target
		}
	}

	var sst struct {
		Items []sharedItem `xml:"si"`
	}
	if err := wb.decode("xl/sharedStrings.xml", &sst); err != nil {
		zr.Close()
		return nil, err
	}
	for _, it := range sst.Items {
		wb.shared = append(wb.shared, it.text())
	}
	return wb, nil
}

func (wb *workbook) Close() error { return wb.zr.Close() }

// decode unmarshals the named zip entry into v. A missing entry leaves v untouched.
func (wb *workbook) decode(name string, v any) error {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s in %s: %w", name, wb.path, err)
		}
		defer rc.Close()
		if err := xml.NewDecoder(rc).Decode(v); err != nil && err != io.EOF {
			return fmt.Errorf("decode %s in %s: %w", name, wb.path, err)
		}
		return nil
	}
	return nil
}

// sheetTarget resolves the zip path of a worksheet by name, or by 1-based
// sheetId when name is empty.
func (wb *workbook) sheetTarget(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		names := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			names[i] = s.Name
		}
		return "", fmt.Errorf("sheet %q not found in workbook %q (available: %s)",
			name, filepath.Base(wb.path), strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

func (wb *workbook) rows(target string) ([][]string, error) {
	var sheet struct {
		Rows []sheetRow `xml:"sheetData>row"`
	}
	if err := wb.decode(target, &sheet); err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		var rec []string
		for i, c := range r.Cells {
			col := i
			if c.Ref != "" {
				if ci := colIndexFromRef(c.Ref); ci >= 0 {
					col = ci
				}
			}
			for len(rec) <= col {
				rec = append(rec, "")
			}
			rec[col] = wb.cellText(c)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (wb *workbook) cellText(c sheetCell) string {
	switch c.Type {
	case "s":
		idx := atoiSafe(c.Value)
		if idx >= 0 && idx < len(wb.shared) {
			return wb.shared[idx]
		}
		return ""
	case "inlineStr":
		return c.Inline.T
	default:
		return c.Value
	}
}

func readXLSX(p, sheetName string, sheetIndex int) ([][]string, error) {
	wb, err := openWorkbook(p)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	target, err := wb.sheetTarget(sheetName, sheetIndex)
	if err != nil {
		return nil, err
	}
	return wb.rows(target)
}

// colIndexFromRef maps a cell reference like "C12" to its 0-based column.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets, which may be absolute
// ("/xl/worksheets/sheet1.xml") or relative to xl/, into zip entry names.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
