package notification

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"transfers/internal/modules/reservation"
)

//go:embed templates/*
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown notification template")

var subjects = map[string]string{
	reservation.TemplateReservationReceived: "We received your reservation {{.ShortRef}}",
	reservation.TemplateNewReservation:      "New reservation {{.ShortRef}}: {{.Service}} on {{.Date}} {{.Time}}",
	reservation.TemplateQuoteSent:           "Your quote for reservation {{.ShortRef}}: {{.Price}}",
	reservation.TemplateQuoteAccepted:       "Quote accepted: reservation {{.ShortRef}}",
	reservation.TemplateQuoteDeclined:       "Quote declined: reservation {{.ShortRef}}",
	reservation.TemplateConfirmation:        "Reservation {{.ShortRef}} confirmed",
	reservation.TemplateCompletion:          "Thank you for travelling with {{.Company}}",
}

// View is the data every template renders from.
type View struct {
	Reference     string
	ShortRef      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Service       string
	Vehicle       string
	Date          string
	Time          string
	Pickup        string
	Destination   string
	Passengers    int
	BabySeats     int
	BoosterSeats  int
	MeetAndGreet  bool
	HasPrice      bool
	Price         string
	Notes         string
	Status        string
	Company       string
	ReviewURL     string
}

func NewView(s *reservation.Snapshot, company, reviewURL string) View {
	r := s.Reservation
	ref := r.ID.String()
	short := ref
	if len(short) > 8 {
		short = strings.ToUpper(short[:8])
	}
	price := r.TotalPrice.String()
	if r.TotalPrice.Currency != "" {
		price += " " + r.TotalPrice.Currency
	}
	return View{
		Reference:     ref,
		ShortRef:      short,
		CustomerName:  s.Client.FullName(),
		CustomerEmail: s.Client.Email,
		CustomerPhone: s.Client.Phone,
		Service:       s.Service.Name,
		Vehicle:       s.VehicleType.Name,
		Date:          r.Date,
		Time:          r.Time,
		Pickup:        s.PickupName,
		Destination:   s.DestinationName,
		Passengers:    r.Passengers,
		BabySeats:     r.BabySeats,
		BoosterSeats:  r.BoosterSeats,
		MeetAndGreet:  r.MeetAndGreet,
		HasPrice:      r.TotalPrice.Amount > 0,
		Price:         price,
		Notes:         r.Notes,
		Status:        string(r.Status),
		Company:       company,
		ReviewURL:     reviewURL,
	}
}

type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type Templates struct {
	subject map[string]*texttemplate.Template
	html    map[string]*htmltemplate.Template
	text    map[string]*texttemplate.Template
}

// LoadTemplates parses every known template once at startup.
func LoadTemplates() (*Templates, error) {
	t := &Templates{
		subject: map[string]*texttemplate.Template{},
		html:    map[string]*htmltemplate.Template{},
		text:    map[string]*texttemplate.Template{},
	}
	for name, subject := range subjects {
		var err error
		if t.subject[name], err = texttemplate.New(name).Parse(subject); err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		if t.html[name], err = htmltemplate.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		if t.text[name], err = texttemplate.ParseFS(templateFS, "templates/layout.txt", "templates/"+name+".txt"); err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
	}
	return t, nil
}

func (t *Templates) Render(name string, v View) (Rendered, error) {
	subject, ok := t.subject[name]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var out Rendered
	var buf bytes.Buffer
	if err := subject.Execute(&buf, v); err != nil {
		return Rendered{}, err
	}
	out.Subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := t.html[name].ExecuteTemplate(&buf, name+".html", v); err != nil {
		return Rendered{}, err
	}
	out.HTML = buf.String()

	buf.Reset()
	if err := t.text[name].ExecuteTemplate(&buf, name+".txt", v); err != nil {
		return Rendered{}, err
	}
	out.Text = strings.TrimSpace(buf.String())
	return out, nil
}
