package extract

// SignalClassifier decides whether page text announces a ticket sale.
//
// Negated context ("presale has ended") is not recognized and still counts
// as a signal.
type SignalClassifier struct {
	cfg Config
}

// NewSignalClassifier creates a SignalClassifier from cfg.
func NewSignalClassifier(cfg Config) *SignalClassifier {
	return &SignalClassifier{cfg: cfg}
}

// HasTicketSignal reports whether text contains any ticket-sale keyword.
func (c *SignalClassifier) HasTicketSignal(text string) bool {
	return c.Keyword(text) != ""
}

// Keyword returns the first ticket-sale keyword found in text, or "".
func (c *SignalClassifier) Keyword(text string) string {
	if c.cfg.TicketKeywords == nil || text == "" {
		return ""
	}
	return c.cfg.TicketKeywords.FindString(text)
}
