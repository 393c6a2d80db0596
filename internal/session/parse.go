package session

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/minsucho/passagetrace/internal/model"
)

// PageSpec names the structural hooks of the result page. All values come
// from configuration; nothing here is tied to one site.
type PageSpec struct {
	EchoClass        string // class of the element echoing the query text
	BlockClass       string // class of one result block (typically a table)
	ProvenanceHeader string // header-cell text of the provenance row
	PassageHeader    string // header-cell text of the passage row
}

// PageResult is the outcome of parsing one result page.
type PageResult struct {
	Echo    string
	Records []model.MatchRecord
	Skipped int // blocks without a parseable provenance or passage field
}

// ParsePage extracts the echoed query text and all result blocks from the
// page HTML. Blocks that cannot be parsed are counted, not fatal. Zero
// blocks is a valid outcome.
func ParsePage(src string, spec PageSpec) (PageResult, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return PageResult{}, err
	}

	res := PageResult{}

	if echo := findByClass(doc, spec.EchoClass); echo != nil {
		res.Echo = strings.TrimSpace(nodeText(echo))
	}

	for _, block := range findAllByClass(doc, spec.BlockClass) {
		prov := rowValue(block, spec.ProvenanceHeader)
		passage := rowValue(block, spec.PassageHeader)
		if prov == "" || passage == "" {
			res.Skipped++
			continue
		}
		rec, ok := parseProvenance(prov)
		if !ok {
			res.Skipped++
			continue
		}
		rec.Passage = passage
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

// parseProvenance splits the text after the last colon of a provenance
// string of the form "<label>: key1, key2, key3". At least three
// comma-separated fields are required; extras are ignored.
func parseProvenance(s string) (model.MatchRecord, bool) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return model.MatchRecord{}, false
	}
	fields := strings.Split(s[idx+1:], ",")
	if len(fields) < 3 {
		return model.MatchRecord{}, false
	}
	return model.MatchRecord{
		Key1: strings.TrimSpace(fields[0]),
		Key2: strings.TrimSpace(fields[1]),
		Key3: strings.TrimSpace(fields[2]),
	}, true
}

// rowValue finds the table row whose header cell (th) text equals header and
// returns the trimmed text of its value cell (td).
func rowValue(block *html.Node, header string) string {
	for _, tr := range findAllByTag(block, "tr") {
		th := findByTag(tr, "th")
		if th == nil || strings.TrimSpace(nodeText(th)) != header {
			continue
		}
		if td := findByTag(tr, "td"); td != nil {
			return strings.TrimSpace(nodeText(td))
		}
	}
	return ""
}

// nodeText concatenates the visible text below n, skipping script-like
// subtrees.
func nodeText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode || class == "" {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func findByClass(n *html.Node, class string) *html.Node {
	if hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func findAllByClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	if hasClass(n, class) {
		// Do not descend into a matched block looking for nested blocks.
		return append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAllByClass(c, class)...)
	}
	return out
}

func findByTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAllByTag(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAllByTag(c, tag)...)
	}
	return out
}
