package htmlio

import (
	"fmt"
	"reflect"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

var (
	articlePolicy = newArticlePolicy()
	minifier      = newMinifier()
)

// newArticlePolicy allows exactly the markup the document model can
// represent. Anything else is stripped down to its text.
func newArticlePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "ul", "ol", "li", "br",
		"strong", "b", "em", "i", "code",
	)
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

func newMinifier() *minify.M {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{
		KeepEndTags:      true,
		KeepQuotes:       true,
		KeepDocumentTags: true,
	})
	return m
}

// Sanitize strips markup that cannot be represented in a document tree and
// any unsafe links.
func Sanitize(src string) string {
	return articlePolicy.Sanitize(src)
}

// Minify collapses insignificant whitespace in an HTML fragment. End tags
// are kept so the output parses back to the same tree. When minifying would
// change the text of the document, src is returned unchanged.
func Minify(src string) (string, error) {
	out, err := minifier.String("text/html", src)
	if err != nil {
		return "", fmt.Errorf("minify html: %w", err)
	}
	same, err := sameDocument(src, out)
	if err != nil {
		return "", err
	}
	if !same {
		return src, nil
	}
	return out, nil
}

func sameDocument(a, b string) (bool, error) {
	da, err := ParseDOM(a)
	if err != nil {
		return false, err
	}
	db, err := ParseDOM(b)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(NodesFromDOM(da), NodesFromDOM(db)), nil
}
