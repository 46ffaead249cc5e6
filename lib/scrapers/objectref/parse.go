package objectref

import (
	"fmt"
	"regexp"
	"strings"

	"sfcatalog/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ObjectDoc is the raw yield of one documentation page before it is
// shaped into a catalog record.
type ObjectDoc struct {
	Name        string
	Cloud       string
	URL         string
	Description string
	AccessRules []string
	Fields      []FieldDoc
}

type FieldDoc struct {
	Name        string
	Type        string
	Description string
}

// object API names look like Account, AccountContactRole, ApexClass
var objectNameRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

func looksLikeObjectName(name string) bool {
	return objectNameRegex.MatchString(name)
}

// ParseObjectPage extracts the object description, field table and access
// rules out of a documentation page. The page layout varies between doc
// sets, so selection is by section heading text rather than by element
// position.
func ParseObjectPage(doc *goquery.Document, name string) (ObjectDoc, error) {
	out := ObjectDoc{Name: name}

	// the first paragraph under the title is the object description
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		for _, n := range p.Nodes {
			text := htmlutil.CleanText(n)
			if text != "" {
				out.Description = text
				return false
			}
		}
		return true
	})

	fields, err := parseFieldTable(doc)
	if err != nil {
		return out, err
	}
	out.Fields = fields
	out.AccessRules = parseAccessRules(doc)
	return out, nil
}

// parseFieldTable locates the table whose headers contain a field-name
// column and a type column. Pages without any such table are a parse
// failure; the caller skips the object rather than storing a shell.
func parseFieldTable(doc *goquery.Document) ([]FieldDoc, error) {
	var fields []FieldDoc
	found := false

	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		table := htmlutil.GetTable(sel)
		nameCol := firstColumn(table, "Field Name", "Field")
		typeCol := firstColumn(table, "Field Type", "Type")
		descCol := firstColumn(table, "Description", "Details")
		if nameCol < 0 || typeCol < 0 {
			return true
		}

		found = true
		for _, row := range table.Rows {
			if nameCol >= len(row) || typeCol >= len(row) {
				continue
			}
			field := FieldDoc{
				Name: strings.TrimSpace(row[nameCol]),
				Type: strings.TrimSpace(row[typeCol]),
			}
			if field.Name == "" {
				continue
			}
			if descCol >= 0 && descCol < len(row) {
				field.Description = row[descCol]
			}
			fields = append(fields, field)
		}
		return false
	})

	if !found {
		return nil, fmt.Errorf("no field table on page")
	}
	return fields, nil
}

func firstColumn(table htmlutil.Table, names ...string) int {
	for _, name := range names {
		if i := table.ColumnIndex(name); i >= 0 {
			return i
		}
	}
	return -1
}

// parseAccessRules collects the paragraphs of the "Special Access Rules"
// section, when the page has one.
func parseAccessRules(doc *goquery.Document) []string {
	var rules []string

	doc.Find("h2, h3").Each(func(_ int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if !strings.EqualFold(title, "Special Access Rules") {
			return
		}
		for sibling := heading.Next(); sibling.Length() > 0; sibling = sibling.Next() {
			if goquery.NodeName(sibling) != "p" {
				break
			}
			for _, n := range sibling.Nodes {
				text := htmlutil.CleanText(n)
				if text != "" {
					rules = append(rules, text)
				}
			}
		}
	})
	return rules
}
