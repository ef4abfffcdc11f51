package reservation

// Notification templates rendered by the notification module.
const (
	TemplateReservationReceived = "reservation_received"
	TemplateNewReservation      = "new_reservation"
	TemplateQuoteSent           = "quote_sent"
	TemplateQuoteAccepted       = "quote_accepted"
	TemplateQuoteDeclined       = "quote_declined"
	TemplateConfirmation        = "confirmation"
	TemplateCompletion          = "completion"
)

// Effect lists the notifications that follow a successful action. An empty
// template means no message for that audience.
type Effect struct {
	ClientTemplate string
	AttachPDF      bool
	AdminTemplate  string
}

var Effects = map[Action]Effect{
	ActionCreate:       {ClientTemplate: TemplateReservationReceived, AdminTemplate: TemplateNewReservation},
	ActionSendQuote:    {ClientTemplate: TemplateQuoteSent},
	ActionAcceptQuote:  {AdminTemplate: TemplateQuoteAccepted},
	ActionDeclineQuote: {AdminTemplate: TemplateQuoteDeclined},
	ActionConfirm:      {ClientTemplate: TemplateConfirmation, AttachPDF: true},
	ActionComplete:     {ClientTemplate: TemplateCompletion},
	ActionCancel:       {},
}
