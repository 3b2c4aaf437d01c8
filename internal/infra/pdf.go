package infra

// pdf.go — Voucher PDF generation using go-pdf/fpdf.
// Renders A7-size coupon-style vouchers with:
//   - EcoSort header
//   - Redeemed item name and points spent
//   - The voucher code in large type
//   - Resident name and issue date
//
// The output file is saved to storagePath/voucher_{code}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
)

// GenerateVoucherPDF renders a voucher coupon for a committed redemption.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateVoucherPDF(residentName, voucherCode, itemName string, pointsSpent int, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("voucher_%s.pdf", voucherCode)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — coupon-sized (custom size, "A7" is not in fpdf's named list)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "EcoSort", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Reward Voucher", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(3)

	// ── Item ─────────────────────────────────────────────────────────────────
	name := itemName
	if len(name) > 30 {
		name = name[:29] + "…"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%d points", pointsSpent), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Voucher code ─────────────────────────────────────────────────────────
	pdf.SetFont("Courier", "B", 18)
	pdf.CellFormat(contentW, 10, voucherCode, "1", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Holder info ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Issued to: "+residentName, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Date: "+time.Now().Format("02/01/2006"), "", 1, "L", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Present this code at the partner outlet.", "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, "Thanks for keeping your zone clean!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
