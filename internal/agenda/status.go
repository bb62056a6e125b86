package agenda

// Status is the closed set of appointment states the plugin recognises.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// NeutralColor is used for any status outside the closed set.
const NeutralColor = "#6B7280"

// Statuses lists the recognised values in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled}
}

// ParseStatus reports whether value is exactly one of the recognised
// statuses. Case and surrounding spaces are significant.
func ParseStatus(value string) (Status, bool) {
	switch s := Status(value); s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return s, true
	}
	return "", false
}

// Color returns the badge colour of the status.
func (s Status) Color() string {
	switch s {
	case StatusConfirmed:
		return "#10B981"
	case StatusPending:
		return "#F59E0B"
	case StatusCancelled:
		return "#EF4444"
	}
	return NeutralColor
}

var statusLabels = map[string]map[Status]string{
	"de": {StatusConfirmed: "Bestätigt", StatusPending: "Ausstehend", StatusCancelled: "Abgesagt"},
	"en": {StatusConfirmed: "Confirmed", StatusPending: "Pending", StatusCancelled: "Cancelled"},
	"fr": {StatusConfirmed: "Confirmé", StatusPending: "En attente", StatusCancelled: "Annulé"},
	"hr": {StatusConfirmed: "Potvrđeno", StatusPending: "Na čekanju", StatusCancelled: "Otkazano"},
	"pt": {StatusConfirmed: "Confirmado", StatusPending: "Pendente", StatusCancelled: "Cancelado"},
}

// Label returns the localised label. Unknown languages fall back to German;
// unknown statuses render their raw value.
func (s Status) Label(lang string) string {
	labels, ok := statusLabels[lang]
	if !ok {
		labels = statusLabels["de"]
	}
	if label, ok := labels[s]; ok {
		return label
	}
	return string(s)
}

// Describe returns label and colour for a raw status string as it arrived
// from the server.
func Describe(raw, lang string) (label, color string) {
	s, ok := ParseStatus(raw)
	if !ok {
		return raw, NeutralColor
	}
	return s.Label(lang), s.Color()
}
