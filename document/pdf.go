// pdf.go renders the allowance document as a paginated PDF using the
// unipdf creator: landscape letter pages, an optional banner image on
// every page, a linked class index, and one styled rate table per
// class.

package document

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/reecedigiacomo/allowance/allowance"
)

// ApplyLicense activates a unipdf metered license key. An empty key is
// a no-op; unipdf then runs in unlicensed evaluation mode.
func ApplyLicense(key string) error {
	if key == "" {
		return nil
	}
	return license.SetMeteredKey(key)
}

// Page geometry in points (creator.PPI points per inch). Letter paper
// in landscape orientation.
var (
	pdfPageWidth    = 11 * creator.PPI
	pdfPageHeight   = 8.5 * creator.PPI
	pdfMarginSide   = 0.75 * creator.PPI
	pdfMarginBottom = 0.5 * creator.PPI
	pdfMarginTop    = 0.5 * creator.PPI
)

// Border widths: boundary edges are drawn heavier than the internal
// dividers of the age column.
const (
	pdfBorderThin  = 0.5
	pdfBorderSolid = 1.0
)

var (
	pdfHeaderFill  = creator.ColorRGBFromHex("#B7B7B7")
	pdfAgeFill     = creator.ColorRGBFromHex("#E0E3FE")
	pdfBorderColor = creator.ColorRGBFromHex("#CCCCCC")
	pdfLinkColor   = creator.ColorRGBFromHex("#0563C1")
	pdfTextColor   = creator.ColorRGBFromHex("#000000")
)

type pdfRenderer struct{}

func init() {
	Register(&pdfRenderer{})
}

func (r *pdfRenderer) Name() string {
	return "PDF Document"
}

func (r *pdfRenderer) Ext() string {
	return ".pdf"
}

func (r *pdfRenderer) MimeType() string {
	return "application/pdf"
}

// Render lays the document out twice: a measurement pass that records
// which page each class section lands on, then a final pass that wires
// the index entries to those pages as internal links. Layout depends
// only on the spec, so both passes paginate identically.
func (r *pdfRenderer) Render(spec Spec) ([]byte, error) {
	pages, _, err := r.build(spec, nil)
	if err != nil {
		return nil, err
	}
	_, c, err := r.build(spec, pages)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfFonts bundles the two standard fonts used throughout the document.
type pdfFonts struct {
	regular *model.PdfFont
	bold    *model.PdfFont
}

// build assembles the full document. When links is nil the index lines
// are plain text and the returned map records the first page of each
// class section, keyed by anchor. When links is non-nil the index
// lines become internal links to those pages.
func (r *pdfRenderer) build(spec Spec, links map[string]int64) (map[string]int64, *creator.Creator, error) {
	c := creator.New()
	c.SetPageSize(creator.PageSize{pdfPageWidth, pdfPageHeight})

	regular, err := model.NewStandard14Font(model.HelveticaName)
	if err != nil {
		return nil, nil, fmt.Errorf("loading font: %w", err)
	}
	bold, err := model.NewStandard14Font(model.HelveticaBoldName)
	if err != nil {
		return nil, nil, fmt.Errorf("loading font: %w", err)
	}
	fonts := pdfFonts{regular: regular, bold: bold}

	topMargin := float64(pdfMarginTop)
	if len(spec.Banner) > 0 {
		img, err := c.NewImageFromData(spec.Banner)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding banner image: %w", err)
		}
		// Full-bleed across the top of every page; page content
		// starts below it.
		img.ScaleToWidth(pdfPageWidth)
		topMargin = img.Height() + 0.25*creator.PPI
		c.DrawHeader(func(block *creator.Block, args creator.HeaderFunctionArgs) {
			img.SetPos(0, 0)
			_ = block.Draw(img)
		})
	}
	c.SetPageMargins(pdfMarginSide, pdfMarginSide, topMargin, pdfMarginBottom)
	c.NewPage()

	if err := r.drawIndex(c, spec, fonts, links); err != nil {
		return nil, nil, err
	}

	pages := make(map[string]int64)
	for _, class := range spec.Classes {
		c.NewPage()
		pages[allowance.Anchor(class)] = int64(c.Context().Page)
		if err := r.drawClassSection(c, spec, class, fonts); err != nil {
			return nil, nil, err
		}
	}
	return pages, c, nil
}

// drawIndex draws the title page: the document title, a "Class"
// heading, and one entry per class jumping to its section.
func (r *pdfRenderer) drawIndex(c *creator.Creator, spec Spec, fonts pdfFonts, links map[string]int64) error {
	title := spec.Title
	if title == "" {
		title = DefaultTitle
	}

	p := c.NewStyledParagraph()
	chunk := p.Append(title)
	chunk.Style.Font = fonts.bold
	chunk.Style.FontSize = 16
	chunk.Style.Color = pdfTextColor
	p.SetMargins(0, 0, 6, 6)
	if err := c.Draw(p); err != nil {
		return fmt.Errorf("drawing title: %w", err)
	}

	p = c.NewStyledParagraph()
	chunk = p.Append("Class")
	chunk.Style.Font = fonts.bold
	chunk.Style.FontSize = 14
	chunk.Style.Color = pdfTextColor
	p.SetMargins(0, 0, 6, 6)
	if err := c.Draw(p); err != nil {
		return fmt.Errorf("drawing class heading: %w", err)
	}

	for _, class := range spec.Classes {
		p = c.NewStyledParagraph()
		if page, ok := links[allowance.Anchor(class)]; ok {
			chunk = p.AddInternalLink(class, page, 0, 0, 0)
		} else {
			// Measurement pass: same text and metrics, no link yet.
			chunk = p.Append(class)
		}
		chunk.Style.Font = fonts.regular
		chunk.Style.FontSize = 11
		chunk.Style.Color = pdfLinkColor
		chunk.Style.Underline = true
		p.SetMargins(0, 0, 0, 6)
		if err := c.Draw(p); err != nil {
			return fmt.Errorf("drawing index entry for %q: %w", class, err)
		}
	}
	return nil
}

// drawClassSection draws one class heading plus its rate table,
// starting at the top of a fresh page.
func (r *pdfRenderer) drawClassSection(c *creator.Creator, spec Spec, class string, fonts pdfFonts) error {
	h := c.NewStyledParagraph()
	chunk := h.Append(class)
	chunk.Style.Font = fonts.bold
	chunk.Style.FontSize = 13
	chunk.Style.Color = pdfTextColor
	h.SetMargins(0, 0, 0, 6)
	if err := c.Draw(h); err != nil {
		return fmt.Errorf("drawing heading for %q: %w", class, err)
	}

	table := c.NewTable(1 + len(allowance.RateFields))

	// Narrow age column, eight equal data columns filling the page.
	widths := make([]float64, 0, 9)
	widths = append(widths, 0.06)
	for range allowance.RateFields {
		widths = append(widths, (1.0-0.06)/float64(len(allowance.RateFields)))
	}
	if err := table.SetColumnWidths(widths...); err != nil {
		return fmt.Errorf("setting column widths: %w", err)
	}
	// Repeat the header row on every page the table spans.
	if err := table.SetHeaderRows(1, 1); err != nil {
		return fmt.Errorf("marking header row: %w", err)
	}

	headers := append([]string{"Age"}, allowance.TierLabels...)
	for _, label := range headers {
		cell := table.NewCell()
		cell.SetBackgroundColor(pdfHeaderFill)
		cell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, pdfBorderSolid)
		cell.SetBorderColor(pdfBorderColor)
		cell.SetVerticalAlignment(creator.CellVerticalAlignmentMiddle)
		cell.SetContent(r.cellParagraph(c, label, fonts.bold))
	}

	bands := allowance.AgeBands()
	for i, band := range bands {
		ageCell := table.NewCell()
		ageCell.SetBackgroundColor(pdfAgeFill)
		// Solid outer edges, thin internal dividers between ages.
		ageCell.SetBorder(creator.CellBorderSideLeft, creator.CellBorderStyleSingle, pdfBorderSolid)
		ageCell.SetBorder(creator.CellBorderSideRight, creator.CellBorderStyleSingle, pdfBorderSolid)
		top, bottom := pdfBorderThin, pdfBorderThin
		if i == 0 {
			top = pdfBorderSolid
		}
		if i == len(bands)-1 {
			bottom = pdfBorderSolid
		}
		ageCell.SetBorder(creator.CellBorderSideTop, creator.CellBorderStyleSingle, top)
		ageCell.SetBorder(creator.CellBorderSideBottom, creator.CellBorderStyleSingle, bottom)
		ageCell.SetBorderColor(pdfBorderColor)
		ageCell.SetVerticalAlignment(creator.CellVerticalAlignmentMiddle)
		ageCell.SetContent(r.cellParagraph(c, band, fonts.bold))

		row := spec.Table.Row(class, band)
		for _, field := range allowance.RateFields {
			cell := table.NewCell()
			cell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, pdfBorderThin)
			cell.SetBorderColor(pdfBorderColor)
			cell.SetVerticalAlignment(creator.CellVerticalAlignmentMiddle)
			cell.SetContent(r.cellParagraph(c, allowance.FormatCurrency(row.Field(field)), fonts.regular))
		}
	}

	if err := c.Draw(table); err != nil {
		return fmt.Errorf("drawing table for %q: %w", class, err)
	}
	return nil
}

// cellParagraph builds a centered 9pt paragraph for a table cell.
func (r *pdfRenderer) cellParagraph(c *creator.Creator, text string, font *model.PdfFont) *creator.StyledParagraph {
	p := c.NewStyledParagraph()
	p.SetTextAlignment(creator.TextAlignmentCenter)
	p.SetMargins(0, 0, 1, 1)
	chunk := p.Append(text)
	chunk.Style.Font = font
	chunk.Style.FontSize = 9
	chunk.Style.Color = pdfTextColor
	return p
}
