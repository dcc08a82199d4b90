// Package document renders confirmed bookings into customer-facing artifacts.
package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/go-pdf/fpdf"
)

type Artifact struct {
	ContentType string
	Filename    string
	Data        []byte
}

type Renderer interface {
	Render(s domain.Session) (*Artifact, error)
}

// PDFRenderer draws an itinerary receipt on a single A4 page.
type PDFRenderer struct {
	issuer string
}

func NewPDFRenderer(issuer string) *PDFRenderer {
	if issuer == "" {
		issuer = "SkyBooking"
	}
	return &PDFRenderer{issuer: issuer}
}

func (r *PDFRenderer) Render(s domain.Session) (*Artifact, error) {
	if s.Status != domain.SessionStatusConfirmed || s.Flight == nil {
		return nil, fmt.Errorf("render receipt: session %s is not confirmed", s.Token)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s itinerary receipt %s", r.issuer, s.Token), false)
	pdf.SetCreator(r.issuer, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, r.issuer+" - Itinerary receipt", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Booking reference: "+s.Token, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issued: "+s.UpdatedAt.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	f := s.Flight
	section(pdf, "Flight")
	row(pdf, "Flight", fmt.Sprintf("%s %s", f.Carrier, f.FlightNumber))
	row(pdf, "Route", fmt.Sprintf("%s -> %s", f.FromAirport, f.ToAirport))
	row(pdf, "Departure", f.DepartureTime.UTC().Format("02 Jan 2006 15:04 MST"))
	row(pdf, "Arrival", f.ArrivalTime.UTC().Format("02 Jan 2006 15:04 MST"))
	row(pdf, "Fare", money(f.FareCents, s.Currency))

	section(pdf, "Passengers")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(10, 7, "#", "B", 0, "L", false, 0, "")
	pdf.CellFormat(80, 7, "Name", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Seat", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Seat price", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range s.Passengers {
		seatID, seatPrice := "-", ""
		if seat, ok := s.SeatFor(i); ok {
			seatID = seat.SeatID
			seatPrice = money(seat.PriceCents, s.Currency)
		}
		pdf.CellFormat(10, 7, fmt.Sprint(i+1), "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, p.FirstName+" "+p.LastName, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, string(p.Type), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, seatID, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, seatPrice, "", 1, "R", false, 0, "")
	}

	if len(s.Baggage) > 0 {
		section(pdf, "Baggage")
		for _, bag := range s.Baggage {
			label := fmt.Sprintf("Passenger %d: %s", bag.PassengerIndex+1, bag.Type)
			if bag.WeightKg > 0 {
				label += fmt.Sprintf(" (%d kg)", bag.WeightKg)
			}
			row(pdf, label, money(bag.PriceCents, s.Currency))
		}
	}

	if s.Insurance != nil {
		section(pdf, "Insurance")
		row(pdf, s.Insurance.Plan, money(s.Insurance.PriceCents, s.Currency))
	}

	if s.Contact != nil {
		section(pdf, "Contact")
		row(pdf, "Email", s.Contact.Email)
		row(pdf, "Phone", s.Contact.Phone)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Total paid", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, money(s.TotalCents, s.Currency), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return &Artifact{
		ContentType: "application/pdf",
		Filename:    fmt.Sprintf("receipt-%s.pdf", s.Token),
		Data:        buf.Bytes(),
	}, nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func row(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(120, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "R", false, 0, "")
}

func money(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

var _ Renderer = (*PDFRenderer)(nil)
