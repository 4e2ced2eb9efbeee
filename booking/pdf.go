package booking

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"tripdesk/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

// Voucher renders a one page PDF for b with a QR code pointing at link.
func Voucher(b *models.Booking, link string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking "+b.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Booking Voucher")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Booking ID", b.ID},
		{"Status", strings.ToUpper(string(b.Status))},
		{"Name", b.FullName},
		{"Email", b.Email},
		{"Phone", b.Phone},
		{"Address", b.Address},
		{"Adventure", fmt.Sprintf("%s (%s)", b.AdventureName, b.AdventureType)},
		{"Date", b.BookingDate},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(35, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(100, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 28, 45, 45, false, opts, 0, link)

	pdf.Ln(6)
	if len(b.SupplementaryConfigs) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Supplements")
		pdf.Ln(9)
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(100, 7, "Item", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 7, "Qty", "1", 0, "R", true, 0, "")
		pdf.CellFormat(35, 7, "Price", "1", 1, "R", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, s := range b.SupplementaryConfigs {
			pdf.CellFormat(100, 7, tr(s.Title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprint(s.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 7, money(s.Price), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(125, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(35, 9, money(b.TotalPrice), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher: %w", err)
	}
	return buf.Bytes(), nil
}

var exportColumns = []struct {
	title string
	width float64
	align string
}{
	{"Name", 50, "L"},
	{"Email", 60, "L"},
	{"Adventure", 60, "L"},
	{"Type", 20, "L"},
	{"Date", 30, "L"},
	{"Total", 25, "R"},
	{"Status", 22, "L"},
}

// Export renders bookings as a landscape table.
func Export(bookings []models.Booking, title string, at time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(235, 235, 235)
		for _, c := range exportColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, "Generated "+at.Format("2006-01-02 15:04"))
	pdf.Ln(8)
	header()

	if len(bookings) == 0 {
		pdf.CellFormat(0, 7, "No bookings", "1", 1, "C", false, 0, "")
	}
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	var total float64
	for _, b := range bookings {
		if pdf.GetY()+7 > pageHeight-bottom-12 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			b.FullName, b.Email, b.AdventureName, b.AdventureType,
			b.BookingDate, money(b.TotalPrice), string(b.Status),
		}
		for i, c := range exportColumns {
			pdf.CellFormat(c.width, 7, tr(fit(pdf, cells[i], c.width-2)), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
		total += b.TotalPrice
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(220, 7, fmt.Sprintf("%d bookings", len(bookings)), "", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, money(total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	return buf.Bytes(), nil
}

// fit shortens s with an ellipsis until it fits width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
