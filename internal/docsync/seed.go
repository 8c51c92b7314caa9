package docsync

import "github.com/dgallion1/cardpress/internal/doctree"

// defaultContent builds the welcome document shown for a brand new article.
func defaultContent() []*doctree.Node {
	bold := func(s string) *doctree.Node { return doctree.NewText(s).ToggleFormat(doctree.FormatBold) }
	italic := func(s string) *doctree.Node { return doctree.NewText(s).ToggleFormat(doctree.FormatItalic) }
	code := func(s string) *doctree.Node { return doctree.NewText(s).ToggleFormat(doctree.FormatCode) }
	text := doctree.NewText

	item := func(before, url, label, after string) *doctree.Node {
		return doctree.NewListItem().Append(
			text(before),
			doctree.NewLink(url).Append(text(label)),
			text(after),
		)
	}

	return []*doctree.Node{
		doctree.NewHeading(doctree.H1).Append(text("Write your card review")),
		doctree.NewQuote().Append(text(
			"This is the starting point for a new article. Replace every block below with your own " +
				"review before publishing; the first paragraph becomes the card description when none is set.",
		)),
		doctree.NewParagraph().Append(
			text("Articles are stored as HTML built from the "),
			code("cardpress"),
			text(" document model."),
			text(" Mark the "),
			bold("key numbers"),
			text(" such as annual fees, and use "),
			italic("italics"),
			text(" for issuer names."),
		),
		doctree.NewParagraph().Append(
			text("Keep the "),
			bold("ratings"),
			text(" and tags in the form consistent with the text, and cite sources as links. Useful references:"),
		),
		doctree.NewList(doctree.ListBullet).Append(
			item("Check the issuer's ", "https://www.bcb.gov.br/", "central bank listing", " for fees."),
			item("Compare the ", "https://www.bcb.gov.br/estabilidadefinanceira/tarifas", "official tariff tables", "."),
			item("Read the ", "https://www.gov.br/consumidor", "consumer protection guide", " on card contracts."),
			item("Link the card's ", "https://example.com/card", "application page", " in the CTA field."),
		),
		doctree.NewParagraph().Append(
			text("When you are done, save the article and the HTML body will be regenerated from this document."),
		),
	}
}

func seed(root *doctree.Node) bool {
	if root.FirstChild() != nil {
		return false
	}
	root.Append(defaultContent()...)
	return true
}
