package request

// Status is the workflow state of a viatic request
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusSubmittedToAdmin Status = "SUBMITTED_TO_ADMIN"
	StatusAdminReview      Status = "ADMIN_REVIEW"
	StatusPendingSignature Status = "PENDING_SIGNATURE"
	StatusSigned           Status = "SIGNED"           // legacy, no action targets it
	StatusSentToTreasury   Status = "SENT_TO_TREASURY" // legacy, no action targets it
	StatusTreasuryReturned Status = "TREASURY_RETURNED"
	StatusAdminCorrection  Status = "ADMIN_CORRECTION"
	StatusReadyForPayment  Status = "READY_FOR_PAYMENT"
	StatusPaid             Status = "PAID"
	StatusCancelled        Status = "CANCELLED"
)

// AllStatuses lists the states in workflow order
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmittedToAdmin,
	StatusAdminReview,
	StatusPendingSignature,
	StatusSigned,
	StatusSentToTreasury,
	StatusTreasuryReturned,
	StatusAdminCorrection,
	StatusReadyForPayment,
	StatusPaid,
	StatusCancelled,
}

var statusLabels = map[Status]string{
	StatusDraft:            "Borrador",
	StatusSubmittedToAdmin: "Enviado a administracion",
	StatusAdminReview:      "En revision",
	StatusPendingSignature: "Pendiente de firma",
	StatusSigned:           "Firmado",
	StatusSentToTreasury:   "En tesoreria",
	StatusTreasuryReturned: "Devuelto por tesoreria",
	StatusAdminCorrection:  "En correccion",
	StatusReadyForPayment:  "Listo para pagar",
	StatusPaid:             "Pagado",
	StatusCancelled:        "Anulado",
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label, falling back to the raw value
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsTerminal returns true for states no action leaves, except payment edits
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}
