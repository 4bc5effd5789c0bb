package gate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	summaryStart = "--- Produktauswahl ---"
	summaryEnd   = "--- Ende Produktauswahl ---"
)

var unitLabels = map[PriceUnit]string{
	UnitPiece:     "Stk.",
	UnitGateArea:  "m² Torfläche",
	UnitGlassArea: "m² Glasfläche",
	UnitTotalArea: "m² Gesamtfläche",
}

// SelectionSummary renders the priced selection as a German text block.
func SelectionSummary(cfg GateConfiguration) string {
	p := message.NewPrinter(language.German)
	var b strings.Builder

	b.WriteString(summaryStart)
	b.WriteByte('\n')
	p.Fprintf(&b, "Maße: %.0f × %.0f cm", cfg.Dimensions.WidthCm, cfg.Dimensions.HeightCm)
	if cfg.Dimensions.GlassHeightCm > 0 {
		p.Fprintf(&b, ", Glashöhe %.0f cm", cfg.Dimensions.GlassHeightCm)
	}
	b.WriteByte('\n')
	p.Fprintf(&b, "Flächen: gesamt %.2f m², Glas %.2f m², Tor %.2f m²\n",
		cfg.Areas.TotalM2, cfg.Areas.GlassM2, cfg.Areas.GateM2)

	for _, line := range cfg.Pricing.Lines {
		p.Fprintf(&b, "%d × %s", line.Quantity, line.Name)
		if label, ok := unitLabels[line.Unit]; ok && line.Unit != UnitPiece {
			p.Fprintf(&b, " (%s", label)
			if line.Sides == 2 {
				b.WriteString(", beidseitig")
			}
			b.WriteByte(')')
		}
		if line.Overridden {
			b.WriteString(" [Sonderpreis]")
		}
		p.Fprintf(&b, ": %.2f € je Einheit, %.2f €\n", Round2(line.UnitPrice), Round2(line.Total))
	}

	p.Fprintf(&b, "Zwischensumme: %.2f €\n", Round2(cfg.Pricing.Subtotal))
	p.Fprintf(&b, "Aufschlag %v %%: %.2f €\n", cfg.MarkupPercent, Round2(cfg.Pricing.MarkupAmount))
	p.Fprintf(&b, "Netto: %.2f €\n", Round2(cfg.Pricing.NetTotal))
	p.Fprintf(&b, "Brutto: %.2f €\n", Round2(cfg.Pricing.GrossTotal))
	b.WriteString(summaryEnd)
	return b.String()
}

// WithSelectionSummary appends the summary of cfg to notes, replacing a
// summary block written by an earlier save. Without priced lines the notes
// are returned without a block.
func WithSelectionSummary(notes string, cfg GateConfiguration) string {
	notes = StripSelectionSummary(notes)
	if len(cfg.Pricing.Lines) == 0 {
		return notes
	}
	if notes == "" {
		return SelectionSummary(cfg)
	}
	return notes + "\n\n" + SelectionSummary(cfg)
}

// StripSelectionSummary removes a summary block from notes.
func StripSelectionSummary(notes string) string {
	start := strings.Index(notes, summaryStart)
	if start < 0 {
		return notes
	}
	rest := notes[start:]
	tail := ""
	if end := strings.Index(rest, summaryEnd); end >= 0 {
		tail = rest[end+len(summaryEnd):]
	}
	head := strings.TrimRight(notes[:start], " \n\r\t")
	tail = strings.TrimSpace(tail)
	if head != "" && tail != "" {
		return head + "\n\n" + tail
	}
	return head + tail
}
