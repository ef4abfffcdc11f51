// README: Document renderer produces the reservation voucher PDF attached to confirmations.
package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"transfers/internal/modules/reservation"
)

// Data is the flat view of a reservation printed on the voucher.
type Data struct {
	ReservationID      string
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	ServiceName        string
	ServiceDescription string
	VehicleName        string
	VehicleDescription string
	Date               string
	Time               string
	Pickup             string
	Destination        string
	Passengers         int
	BabySeats          int
	BoosterSeats       int
	MeetAndGreet       bool
	TotalPrice         string
	Currency           string
	Notes              string
	Status             string
	CreatedAt          time.Time
}

func FromSnapshot(s *reservation.Snapshot) Data {
	r := s.Reservation
	return Data{
		ReservationID:      r.ID.String(),
		CustomerName:       s.Client.FullName(),
		CustomerEmail:      s.Client.Email,
		CustomerPhone:      s.Client.Phone,
		ServiceName:        s.Service.Name,
		ServiceDescription: s.Service.Description,
		VehicleName:        s.VehicleType.Name,
		VehicleDescription: s.VehicleType.Description,
		Date:               r.Date,
		Time:               r.Time,
		Pickup:             s.PickupName,
		Destination:        s.DestinationName,
		Passengers:         r.Passengers,
		BabySeats:          r.BabySeats,
		BoosterSeats:       r.BoosterSeats,
		MeetAndGreet:       r.MeetAndGreet,
		TotalPrice:         r.TotalPrice.String(),
		Currency:           r.TotalPrice.Currency,
		Notes:              r.Notes,
		Status:             string(r.Status),
		CreatedAt:          r.CreatedAt,
	}
}

// Labels holds the printed captions of one language.
type Labels struct {
	Title        string
	Reference    string
	Customer     string
	Email        string
	Phone        string
	Service      string
	Vehicle      string
	DateTime     string
	Pickup       string
	Destination  string
	Passengers   string
	BabySeats    string
	BoosterSeats string
	MeetGreet    string
	Total        string
	Notes        string
	Status       string
	IssuedAt     string
	Yes          string
	No           string
	Footer       string
}

var English = Labels{
	Title:        "Transfer reservation",
	Reference:    "Reference",
	Customer:     "Customer",
	Email:        "Email",
	Phone:        "Phone",
	Service:      "Service",
	Vehicle:      "Vehicle",
	DateTime:     "Date / time",
	Pickup:       "Pickup",
	Destination:  "Destination",
	Passengers:   "Passengers",
	BabySeats:    "Baby seats",
	BoosterSeats: "Booster seats",
	MeetGreet:    "Meet & greet",
	Total:        "Total price",
	Notes:        "Notes",
	Status:       "Status",
	IssuedAt:     "Booked on",
	Yes:          "Yes",
	No:           "No",
	Footer:       "Please show this voucher to your driver.",
}

var French = Labels{
	Title:        "Réservation de transfert",
	Reference:    "Référence",
	Customer:     "Client",
	Email:        "E-mail",
	Phone:        "Téléphone",
	Service:      "Service",
	Vehicle:      "Véhicule",
	DateTime:     "Date / heure",
	Pickup:       "Prise en charge",
	Destination:  "Destination",
	Passengers:   "Passagers",
	BabySeats:    "Sièges bébé",
	BoosterSeats: "Rehausseurs",
	MeetGreet:    "Accueil personnalisé",
	Total:        "Prix total",
	Notes:        "Remarques",
	Status:       "Statut",
	IssuedAt:     "Réservé le",
	Yes:          "Oui",
	No:           "Non",
	Footer:       "Merci de présenter ce bon à votre chauffeur.",
}

// LabelsFor picks labels by language tag, defaulting to English.
func LabelsFor(lang string) *Labels {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "fr") {
		return &French
	}
	return &English
}

type Renderer struct {
	Company string
}

func NewRenderer(company string) *Renderer {
	return &Renderer{Company: company}
}

// Render returns the voucher as PDF bytes. A nil labels uses English.
func (r *Renderer) Render(d Data, labels *Labels) ([]byte, error) {
	if labels == nil {
		labels = &English
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(labels.Title+" "+d.ReservationID), false)
	pdf.SetAuthor(tr(r.Company), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(labels.Title))
	pdf.Ln(10)
	if r.Company != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, tr(r.Company))
		pdf.Ln(8)
	}

	rows := [][2]string{
		{labels.Reference, d.ReservationID},
		{labels.Status, d.Status},
		{labels.Customer, d.CustomerName},
		{labels.Email, d.CustomerEmail},
		{labels.Phone, d.CustomerPhone},
		{labels.Service, d.ServiceName},
		{labels.Vehicle, d.VehicleName},
		{labels.DateTime, strings.TrimSpace(d.Date + " " + d.Time)},
		{labels.Pickup, d.Pickup},
		{labels.Destination, d.Destination},
		{labels.Passengers, strconv.Itoa(d.Passengers)},
		{labels.BabySeats, strconv.Itoa(d.BabySeats)},
		{labels.BoosterSeats, strconv.Itoa(d.BoosterSeats)},
		{labels.MeetGreet, yesNo(d.MeetAndGreet, labels)},
		{labels.Total, strings.TrimSpace(d.TotalPrice + " " + d.Currency)},
	}
	if !d.CreatedAt.IsZero() {
		rows = append(rows, [2]string{labels.IssuedAt, d.CreatedAt.Format("2006-01-02 15:04")})
	}

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(orDash(row[1])), "", 1, "L", false, 0, "")
	}

	if d.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, tr(labels.Notes))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(d.Notes), "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, tr(labels.Footer), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render reservation pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func Filename(d Data) string {
	id := d.ReservationID
	if len(id) > 8 {
		id = id[:8]
	}
	return "reservation-" + id + ".pdf"
}

func yesNo(v bool, l *Labels) string {
	if v {
		return l.Yes
	}
	return l.No
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
