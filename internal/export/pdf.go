package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 40.0
)

// ExportPDF writes a quote for calc: a summary page with the material table
// and a QR code of the summary, followed by a drawing of the pipe grid.
func ExportPDF(path string, calc model.Calculation) error {
	if len(calc.Materials) == 0 {
		return fmt.Errorf("no materials to export")
	}
	grid, err := NewGrid(calc)
	if err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderQuotePage(pdf, calc); err != nil {
		return err
	}

	pdf.AddPage()
	renderGridPage(pdf, calc, grid)

	return pdf.OutputFileAndClose(path)
}

// renderQuotePage draws the input summary, material table and QR code.
func renderQuotePage(pdf *fpdf.Fpdf, calc model.Calculation) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Frame Material Quote", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Frame", "", 0, "L", false, 0, "")
	y += 9

	mf := calc.Product.MiniFrame
	items := []struct {
		label string
		value string
	}{
		{"Quote", calc.ID},
		{"Date", calc.CreatedAt.Format("2006-01-02 15:04")},
		{"Size", fmt.Sprintf("%g x %g m", calc.Input.Length, calc.Input.Width)},
		{"Area", fmt.Sprintf("%.2f m²", calc.Product.FrameArea)},
		{"Sheet", calc.Input.Sheet},
		{"Pipe", calc.Input.Pipe},
		{"Strength", calc.Input.Strength},
		{"Mini-frame", fmt.Sprintf("%.3f x %.3f m (%.4f m²)", mf.Length, mf.Width, mf.Area())},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(40, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Materials", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{80, 25, 30, 35}
	headers := []string{"Material", "Unit", "Quantity", "Cost"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range calc.Materials {
		xPos = marginLeft
		rowData := []string{
			row.Name,
			row.Unit,
			fmt.Sprintf("%d", row.OverallMaterial),
			fmt.Sprintf("%.2f", row.TotalCost),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			align := "C"
			if j == 0 {
				align = "L"
			}
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, align, true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft+colWidths[0]+colWidths[1], y)
	pdf.CellFormat(colWidths[2], 7, "Total", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidths[3], 7, fmt.Sprintf("%.2f", calc.Product.TotalCost), "1", 0, "C", false, 0, "")

	if err := drawSummaryQR(pdf, calc, pageWidth-marginRight-qrSize, marginTop+18); err != nil {
		return err
	}

	drawFooter(pdf)
	return nil
}

// drawSummaryQR places a QR code encoding the quote summary as JSON.
func drawSummaryQR(pdf *fpdf.Fpdf, calc model.Calculation, x, y float64) error {
	qrData, err := json.Marshal(Summarize(calc))
	if err != nil {
		return fmt.Errorf("failed to marshal quote summary: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + calc.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(x, y+qrSize+1)
	pdf.CellFormat(qrSize, 4, "Scan for quote summary", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// renderGridPage draws the frame outline and the pipe grid scaled to the page.
func renderGridPage(pdf *fpdf.Fpdf, calc model.Calculation, grid Grid) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Pipe grid: %g x %g m, step %.2f m", grid.Length, grid.Width, calc.Layout.Step)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pipe: %.2f m | Mini-frames: %.2f | Screws: %.0f",
		calc.Layout.OverallPipeLength, calc.Layout.NumberMiniFrames, math.Ceil(calc.Layout.OverallScrews))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - 10
	drawHeight := pageHeight - drawAreaTop - marginBottom - 10

	scale := math.Min(drawWidth/grid.Width, drawHeight/grid.Length)
	canvasW := grid.Width * scale
	canvasH := grid.Length * scale

	offsetX := marginLeft + 10 + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Sheet background
	pdf.SetFillColor(220, 235, 245)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	pdf.SetDrawColor(90, 90, 90)
	pdf.SetLineWidth(0.4)
	for _, x := range grid.Xs {
		px := offsetX + x*scale
		pdf.Line(px, offsetY, px, offsetY+canvasH)
	}
	pdf.SetLineWidth(0.25)
	for _, y := range grid.Ys {
		py := offsetY + y*scale
		pdf.Line(offsetX, py, offsetX+canvasW, py)
	}

	drawDimensionAnnotations(pdf, grid, offsetX, offsetY, canvasW, canvasH)
	drawFooter(pdf)
}

// drawDimensionAnnotations adds width and length labels outside the frame rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, grid Grid, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%g m", grid.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	lengthLabel := fmt.Sprintf("%g m", grid.Length)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	lLabelW := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX-3-lLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(lLabelW, 4, lengthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func drawFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by FrameCalc - Frame Material Calculator", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
