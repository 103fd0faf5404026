package stubapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"clinup/internal/reservation"
)

// vatRate is the French standard rate applied to cleaning services.
var vatRate = decimal.RequireFromString("0.20")

// Receipt serves the PDF receipt of a paid reservation. The route is public.
func (h Handlers) Receipt(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadReservation(w, r, urlID(r, "id"))
	if !ok {
		return
	}
	if rec.Status() != reservation.StatusPayer {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Aucun reçu pour une réservation non payée.")
		return
	}
	pdf, err := ReceiptPDF(rec, h.now())
	if err != nil {
		h.internal(w, "render receipt", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%s.pdf"`, rec.Reservation.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// ReceiptLines is the text printed on a receipt, top to bottom.
func ReceiptLines(rec Record, issued time.Time) []string {
	res := rec.Reservation
	total := res.Prix
	ht := total.Div(decimal.NewFromInt(1).Add(vatRate)).Round(2)
	tva := total.Sub(ht)

	lines := []string{
		fmt.Sprintf("Reçu de réservation n° %s", res.ID),
		"Émis le " + issued.Format("02/01/2006"),
		"",
		"Logement : " + res.Logement.Name,
	}
	if host := res.Logement.Hote; host != nil {
		lines = append(lines, "Hôte : "+host.FullName())
	}
	if p := res.Prestataire; p != nil {
		lines = append(lines, "Prestataire : "+p.FullName())
	}
	lines = append(lines,
		fmt.Sprintf("Date : %s à %s", res.Date, res.Heure),
		fmt.Sprintf("Durée : %d min", res.NbrHeure),
		"",
		"Montant HT : "+ht.StringFixed(2)+" EUR",
		"TVA 20 % : "+tva.StringFixed(2)+" EUR",
		"Total TTC : "+total.StringFixed(2)+" EUR",
	)
	return lines
}

// ReceiptPDF renders a one page PDF with the built-in Helvetica font.
func ReceiptPDF(rec Record, issued time.Time) ([]byte, error) {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

	var content bytes.Buffer
	content.WriteString("BT\n/F1 12 Tf\n14 TL\n50 790 Td\n")
	for _, line := range ReceiptLines(rec, issued) {
		latin, err := enc.String(line)
		if err != nil {
			return nil, err
		}
		content.WriteString("(" + pdfEscape(latin) + ") Tj T*\n")
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes(), nil
}

func pdfEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}
