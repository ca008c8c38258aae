package infra

// pdf.go: bill receipts rendered with go-pdf/fpdf.
// Layout is a 74mm thermal-style slip:
//   - store name header, bill number and timestamp
//   - one row per line (combo lines tagged with their slot)
//   - subtotal, discounts, combo savings, tax
//   - round-off and bold final amount
//
// The output file is saved to storagePath/receipt_{bill_number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReceiptFileName is the file name GenerateReceiptPDF writes for a bill number.
func ReceiptFileName(billNumber string) string {
	return fmt.Sprintf("receipt_%s.pdf", billNumber)
}

// GenerateReceiptPDF writes the receipt of bill into storagePath (created if
// needed) and returns the file path.
func GenerateReceiptPDF(bill *model.Bill, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, ReceiptFileName(bill.BillNumber))

	// Height grows with the number of rows so long bills are not cut.
	height := 90.0 + 5.0*float64(len(bill.Lines)+len(bill.Combos))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Tax Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Bill "+bill.BillNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, bill.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range bill.Lines {
		name := l.ProductName
		if l.SlotName != nil {
			name = "[" + *l.SlotName + "] " + name
		}
		if len(name) > 24 {
			name = name[:23] + "."
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, l.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	row := func(label, value string) {
		pdf.CellFormat(col1+col2, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	row("Subtotal:", bill.Subtotal.StringFixed(2))
	if !bill.TotalDiscount.IsZero() {
		row("Discount:", "-"+bill.TotalDiscount.StringFixed(2))
	}
	for _, c := range bill.Combos {
		row("Combo "+c.ComboCode+":", "-"+c.SavingsAmount.StringFixed(2))
	}
	row("Tax:", bill.TotalTax.StringFixed(2))
	if !bill.RoundOff.IsZero() {
		row("Round off:", bill.RoundOff.StringFixed(2))
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, bill.FinalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if bill.IsComboSale {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(contentW, 4, "You saved "+bill.ComboSavings.StringFixed(2)+" with combos", "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for shopping with us", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
