package analyzer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/ticket-tracker/internal/extract"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
)

// Finding is the result of analyzing one page.
type Finding struct {
	TicketDate string `json:"ticket_date"`
	HasSignal  bool   `json:"has_signal"`
	Title      string `json:"title,omitempty"`
	Heading    string `json:"heading,omitempty"`
}

// IsEmpty reports whether nothing at all was found.
func (f Finding) IsEmpty() bool {
	return f == Finding{}
}

// Notes returns the notes column value for the classifier outcome.
func (f Finding) Notes() string {
	if f.HasSignal {
		return record.NoteTicketInfo
	}
	return record.NoteNoSignal
}

// Page holds the parts of a rendered page the analyzer looks at.
type Page struct {
	Text    string
	Title   string
	Heading string
}

// Analyzer combines date extraction and signal classification.
type Analyzer struct {
	dates   *extract.DateExtractor
	signals *extract.SignalClassifier
}

// New creates an Analyzer using the pattern tables in cfg.
func New(cfg extract.Config) *Analyzer {
	return &Analyzer{
		dates:   extract.NewDateExtractor(cfg),
		signals: extract.NewSignalClassifier(cfg),
	}
}

// Analyze inspects page text. Empty text yields an empty Finding.
func (a *Analyzer) Analyze(pageText, pageTitle, primaryHeading string) Finding {
	if strings.TrimSpace(pageText) == "" {
		return Finding{}
	}
	return Finding{
		TicketDate: a.dates.Earliest(pageText),
		HasSignal:  a.signals.HasTicketSignal(pageText),
		Title:      pageTitle,
		Heading:    primaryHeading,
	}
}

// AnalyzeHTML parses rendered HTML and analyzes its visible text.
func (a *Analyzer) AnalyzeHTML(r io.Reader) (Finding, error) {
	page, err := ParsePage(r)
	if err != nil {
		return Finding{}, err
	}
	return a.Analyze(page.Text, page.Title, page.Heading), nil
}

// ParsePage extracts the visible text, the title and the first h1 from HTML.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parsing HTML: %w", err)
	}

	return Page{
		Text:    visibleText(doc.Selection),
		Title:   collapse(doc.Find("title").First().Text()),
		Heading: collapse(doc.Find("h1").First().Text()),
	}, nil
}

// visibleText joins all text nodes with single spaces so adjacent elements
// do not run together.
func visibleText(sel *goquery.Selection) string {
	parts := make([]string, 0)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := collapse(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
