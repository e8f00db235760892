package scraper

import (
	"regexp"
	"strings"

	"svescraper/helpers"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// labelMap translates the site's Japanese field labels to canonical columns.
// Process-wide, read-only.
var labelMap = map[string]string{
	"カード番号":    "cardno",
	"カード名":     "name",
	"名称":       "name",
	"クラス":      "class",
	"タイトル":     "title",
	"収録商品":     "expansion",
	"商品":       "expansion",
	"カード種類":    "kind",
	"種類":       "kind",
	"レアリティ":    "rarity",
	"コスト":      "cost",
	"パワー":      "power",
	"攻撃力":      "power",
	"体力":       "hp",
	"タイプ":      "type",
	"能力":       "ability",
	"キーワード":    "keywords",
	"イラストレーター": "illustrator",
}

// Known locations of the card name, in priority order. Layouts differ per
// product generation, so the first non-empty match wins.
var nameSelectors = []string{
	".cardlist-Detail .txt > h1.ttl",
	".cardlist-Detail h1.ttl",
	".card-Detail_Name",
	".cardDetail-Name",
	".CardDetail_Name",
	"h1",
	".Detail_Title",
}

// Known locations of the main card image, in priority order.
var imageSelectors = []string{
	".card-Detail_Image img",
	".CardDetail_Image img",
	".cardlist-Card_Image img",
	"img.card-image",
	"main img",
}

const abilityFallbackSelector = ".Ability, .CardText, .card-Ability, .cardtext"

var (
	labelStripRe      = regexp.MustCompile(`[\s　:：]+`)
	horizontalSpaceRe = regexp.MustCompile(`[\t\r\f\v ]+`)
	digitsRe          = regexp.MustCompile(`\d+`)
)

// normalizeLabel folds the full-width colon into its ASCII form and trims.
func normalizeLabel(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "：", ":"))
}

// simplifyLabel strips whitespace and colon variants entirely, for the
// punctuation-insensitive second lookup tier.
func simplifyLabel(s string) string {
	return labelStripRe.ReplaceAllString(s, "")
}

// canonicalField maps a normalized label to its canonical field name. Exact
// table lookup first, then a whitespace/punctuation-insensitive comparison
// against every known label.
func canonicalField(label string) (string, bool) {
	if key, ok := labelMap[label]; ok {
		return key, true
	}
	simple := simplifyLabel(label)
	for known, key := range labelMap {
		if simple == simplifyLabel(known) {
			return key, true
		}
	}
	return "", false
}

// ExtractDetail converts a detail page's DOM into a canonical record. Every
// rule is heuristic: missing blocks simply leave their fields absent.
func ExtractDetail(doc *goquery.Document, baseURL string) Record {
	rec := Record{}

	for _, sel := range nameSelectors {
		if txt := strings.TrimSpace(doc.Find(sel).First().Text()); txt != "" {
			rec["name"] = txt
			break
		}
	}

	for _, sel := range imageSelectors {
		img := doc.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || strings.Contains(src, logoAssetToken) {
			continue
		}
		rec["image_url"] = resolveURL(baseURL, src)
		break
	}

	extractDefinitionLists(doc, rec)

	// The primary content block outranks a definition-list ability entry;
	// the alternates only fill an ability that is still empty.
	if text := extractBlockText(doc, ".detail"); text != "" {
		rec["ability"] = text
	}
	if rec["ability"] == "" {
		if text := extractBlockText(doc, abilityFallbackSelector); text != "" {
			rec["ability"] = text
		}
	}

	extractStatus(doc, rec)

	return rec
}

// extractDefinitionLists scans every definition list whose label and value
// cells pair up, merging recognized labels into the record. A repeated field
// is appended after a separator; identical repeats are dropped.
func extractDefinitionLists(doc *goquery.Document, rec Record) {
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dts := dl.Find("dt")
		dds := dl.Find("dd")
		if dts.Length() == 0 || dts.Length() != dds.Length() {
			return
		}
		dts.Each(func(i int, dt *goquery.Selection) {
			dd := dds.Eq(i)
			label := normalizeLabel(dt.Text())
			value := helpers.CollapseSpaces(spacedText(dd))
			if value == "" {
				// Numbers are sometimes rendered as icon images only.
				var alts []string
				dd.Find("img").Each(func(_ int, img *goquery.Selection) {
					if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
						alts = append(alts, alt)
					}
				})
				value = strings.Join(alts, " ")
			}

			key, ok := canonicalField(label)
			if !ok || value == "" {
				return
			}
			switch prev := rec[key]; {
			case prev == "":
				rec[key] = value
			case !strings.Contains(prev, value):
				rec[key] = prev + " / " + value
			}
		})
	})
}

// extractBlockText renders a content block to plain text: inline icons are
// replaced by their alt text (or removed), <br> becomes a newline, runs of
// non-newline whitespace collapse to one space, and every line is trimmed.
func extractBlockText(doc *goquery.Document, selector string) string {
	block := doc.Find(selector).First()
	if block.Length() == 0 {
		return ""
	}

	block.Find("img").Each(func(_ int, img *goquery.Selection) {
		replaceWithText(img, strings.TrimSpace(img.AttrOr("alt", "")))
	})
	block.Find("br").Each(func(_ int, br *goquery.Selection) {
		replaceWithText(br, "\n")
	})

	text := horizontalSpaceRe.ReplaceAllString(block.Text(), " ")
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	text = strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}

// spacedText renders a selection to text with a space at every element
// boundary, so adjacent child elements do not run their words together.
func spacedText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// replaceWithText swaps a node for a plain text node, or removes it when the
// replacement is empty.
func replaceWithText(s *goquery.Selection, text string) {
	if text != "" {
		for _, n := range s.Nodes {
			if n.Parent == nil {
				continue
			}
			n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
		}
	}
	s.Remove()
}

// extractStatus pulls cost/power/hp from the dedicated status block, taking
// the first run of digits in each sub-element. Values from the
// definition-list pass are never overwritten.
func extractStatus(doc *goquery.Document, rec Record) {
	status := doc.Find(".status").First()
	if status.Length() == 0 {
		return
	}

	statusFields := []struct {
		field    string
		selector string
	}{
		{"cost", ".status-Item-Cost"},
		{"power", ".status-Item-Power"},
		{"hp", ".status-Item-Hp"},
	}
	for _, sf := range statusFields {
		if rec[sf.field] != "" {
			continue
		}
		el := status.Find(sf.selector).First()
		if el.Length() == 0 {
			continue
		}
		if num := digitsRe.FindString(el.Text()); num != "" {
			rec[sf.field] = num
		}
	}
}
