package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"p9e.in/procurement/models"
	"p9e.in/procurement/pkg/apperr"
	"p9e.in/procurement/pkg/party"
	"p9e.in/procurement/pkg/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func exportFilename(doc models.Document) string {
	h := doc.Header()
	name := h.DisplayID
	if name == "" {
		name = h.ID.String()
	}
	return unsafeFilename.ReplaceAllString(name, "_") + ".xlsx"
}

// documentWorkbook lays out one document: header, both parties, items and,
// for priced documents, the totals. Nothing is computed here.
func documentWorkbook(doc models.Document, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Document"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	h := doc.Header()
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %s", doc.DocType().Label(), h.DisplayID))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetRowHeight(sheet, 1, 30)
	f.SetCellValue(sheet, "A2", "Status")
	f.SetCellValue(sheet, "B2", string(h.Status))
	f.SetCellValue(sheet, "A3", "Generated")
	f.SetCellValue(sheet, "B3", generated.Format("2006-01-02 15:04:05"))

	row := 5
	for _, p := range []struct {
		label string
		snap  models.PartySnapshot
	}{{"Buyer", h.Buyer}, {"Seller", h.Seller}} {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheet, cell, p.label)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
		for i, v := range []string{p.snap.CompanyName, p.snap.ContactName, p.snap.Email, p.snap.Phone,
			p.snap.Address, p.snap.City, p.snap.State, p.snap.Country, p.snap.PostalCode, p.snap.TaxID} {
			c, _ := excelize.CoordinatesToCellName(i+2, row)
			f.SetCellValue(sheet, c, v)
		}
		row++
	}

	row++
	priced, isPriced := doc.(models.Priced)
	headers := []string{"#", "Product", "Description", "SKU", "HSN", "UoM", "Quantity"}
	if isPriced {
		headers = append(headers, "Unit price", "Sub total")
	}
	for i, label := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	f.SetColWidth(sheet, "B", "C", 30)

	for _, l := range doc.Lines() {
		row++
		values := []any{l.SerialNumber, l.ProductName, l.Description, l.SKU, l.HSNCode, l.UnitOfMeasure, l.Quantity.InexactFloat64()}
		if isPriced {
			values = append(values, l.UnitPrice.InexactFloat64(), l.SubTotal.InexactFloat64())
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if isPriced {
		m := priced.Money()
		row += 2
		for _, t := range []struct {
			label string
			value float64
		}{
			{"Sum of sub totals", m.SumOfSubTotal.InexactFloat64()},
			{"Discount", m.DiscountAmount.InexactFloat64()},
			{"After discount", m.AmountAfterDiscount.InexactFloat64()},
			{"Additional charges", m.AdditionalCharges.InexactFloat64()},
			{"Tax", m.TaxAmount.InexactFloat64()},
			{"Total (" + m.Currency + ")", m.TotalAmount.InexactFloat64()},
		} {
			label, _ := excelize.CoordinatesToCellName(len(headers)-1, row)
			value, _ := excelize.CoordinatesToCellName(len(headers), row)
			f.SetCellValue(sheet, label, t.label)
			f.SetCellStyle(sheet, label, label, boldStyle)
			f.SetCellValue(sheet, value, t.value)
			row++
		}
	}
	return f, nil
}

func renderDocument(doc models.Document, at time.Time) (*bytes.Buffer, error) {
	f, err := documentWorkbook(doc, at)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.WriteToBuffer()
}

// Export downloads a document as an XLSX workbook.
// GET /api/v1/{collection}/{id}/export
func Export[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := loadVisible[T, P](e, r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		buf, err := renderDocument(doc, e.now())
		if err != nil {
			respondError(w, r, apperr.Internal(err, "failed to generate workbook"))
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(doc)))
		w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

var archiveFilename = regexp.MustCompile(`^[A-Za-z0-9_-]+\.xlsx$`)

// archiveKey places archived workbooks under the document they render, so
// a download can be checked against that document's parties.
func archiveKey(doc models.Document, file string) (string, error) {
	if !archiveFilename.MatchString(file) {
		return "", apperr.Invalid("file", "invalid archive file name")
	}
	return fmt.Sprintf("archive/%s/%s/%s", doc.DocType(), doc.Header().ID, file), nil
}

// Archive renders a document and stores the workbook in blob storage.
// POST /api/v1/{collection}/{id}/archive
func Archive[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e.store == nil {
			respondError(w, r, apperr.Internal(nil, "archive storage is not configured"))
			return
		}
		doc, err := loadVisible[T, P](e, r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		now := e.now()
		buf, err := renderDocument(doc, now)
		if err != nil {
			respondError(w, r, apperr.Internal(err, "failed to generate workbook"))
			return
		}

		file := now.UTC().Format("20060102T150405") + "-" + exportFilename(doc)
		key, err := archiveKey(doc, file)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if err := e.store.Put(r.Context(), key, xlsxContentType, buf); err != nil {
			respondError(w, r, apperr.Internal(err, "failed to store workbook"))
			return
		}
		h := doc.Header()
		slog.Info("document archived", "type", doc.DocType(), "id", h.ID, "key", key)
		writeJSON(w, http.StatusCreated, map[string]string{
			"file": file,
			"url":  strings.TrimSuffix(r.URL.Path, "/") + "/" + file,
		})
	}
}

// ArchivedFile streams a stored workbook to either party of its document.
// GET /api/v1/{collection}/{id}/archive/{file}
func ArchivedFile[T any, P docPtr[T]](e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e.store == nil {
			respondError(w, r, apperr.NotFound("archive not found"))
			return
		}
		doc, err := loadVisible[T, P](e, r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		file := mux.Vars(r)["file"]
		key, err := archiveKey(doc, file)
		if err != nil {
			respondError(w, r, err)
			return
		}
		rc, err := e.store.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondError(w, r, apperr.NotFound("archive not found"))
				return
			}
			respondError(w, r, apperr.Internal(err, "failed to read workbook"))
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, rc); err != nil {
			slog.Warn("archive download interrupted", "key", key, "error", err)
		}
	}
}

// loadVisible fetches a document for either of its parties.
func loadVisible[T any, P docPtr[T]](e *Engine, r *http.Request) (P, error) {
	var none P
	actor, err := actorOf(r)
	if err != nil {
		return none, err
	}
	id, err := pathID(r)
	if err != nil {
		return none, err
	}
	doc := P(new(T))
	if err := load(e.conn(r.Context()), doc, id, false); err != nil {
		return none, err
	}
	if _, err := party.Authorize(doc.Header().Parties(), actor, doc.DocType()); err != nil {
		return none, err
	}
	return doc, nil
}
