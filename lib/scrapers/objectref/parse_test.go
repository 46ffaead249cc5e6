package objectref

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const accountPage = `
<html><body>
<h1>Account</h1>
<p></p>
<p>Represents an individual account, which is an organization or person
involved with your business.</p>
<h2>Fields</h2>
<table>
  <tr><th>Field Name</th><th>Field Type</th><th>Description</th></tr>
  <tr><td>Name</td><td>string</td><td>Name of the account.</td></tr>
  <tr><td>AnnualRevenue</td><td>currency</td><td>Estimated annual revenue.</td></tr>
  <tr><td></td><td>string</td><td>row without a name is dropped</td></tr>
</table>
<h2>Special Access Rules</h2>
<p>Customer Portal users can access their own account.</p>
<p>High Volume users cannot access accounts.</p>
<h2>Usage</h2>
<p>Use this object to query accounts.</p>
</body></html>`

func parseFixture(t *testing.T, page, name string) ObjectDoc {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	out, err := ParseObjectPage(doc, name)
	require.NoError(t, err)
	return out
}

func TestParseObjectPage(t *testing.T) {
	out := parseFixture(t, accountPage, "Account")

	require.Equal(t, "Account", out.Name)
	require.Contains(t, out.Description, "Represents an individual account")

	require.Len(t, out.Fields, 2)
	require.Equal(t, "Name", out.Fields[0].Name)
	require.Equal(t, "string", out.Fields[0].Type)
	require.Equal(t, "Name of the account.", out.Fields[0].Description)
	require.Equal(t, "AnnualRevenue", out.Fields[1].Name)
	require.Equal(t, "currency", out.Fields[1].Type)

	require.Equal(t, []string{
		"Customer Portal users can access their own account.",
		"High Volume users cannot access accounts.",
	}, out.AccessRules)
}

func TestParseObjectPageAlternateHeaders(t *testing.T) {
	// some doc sets title the columns Field / Type / Details instead
	page := `
<html><body>
<p>Represents a contact.</p>
<table>
  <tr><th>Field</th><th>Type</th><th>Details</th></tr>
  <tr><td>Email</td><td>email</td><td>Email address.</td></tr>
</table>
</body></html>`

	out := parseFixture(t, page, "Contact")
	require.Len(t, out.Fields, 1)
	require.Equal(t, "Email", out.Fields[0].Name)
	require.Equal(t, "email", out.Fields[0].Type)
	require.Equal(t, "Email address.", out.Fields[0].Description)
}

func TestParseObjectPageSkipsNonFieldTables(t *testing.T) {
	// the supported-calls table comes before the field table on many pages
	page := `
<html><body>
<p>Represents a lead.</p>
<table>
  <tr><th>Supported Calls</th></tr>
  <tr><td>create(), query()</td></tr>
</table>
<table>
  <tr><th>Field Name</th><th>Field Type</th></tr>
  <tr><td>Company</td><td>string</td></tr>
</table>
</body></html>`

	out := parseFixture(t, page, "Lead")
	require.Len(t, out.Fields, 1)
	require.Equal(t, "Company", out.Fields[0].Name)
}

func TestParseObjectPageWithoutFieldTable(t *testing.T) {
	page := `<html><body><p>A page with no tables at all.</p></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	_, err = ParseObjectPage(doc, "Broken")
	require.Error(t, err)
}

func TestLooksLikeObjectName(t *testing.T) {
	require.True(t, looksLikeObjectName("Account"))
	require.True(t, looksLikeObjectName("AccountContactRole"))
	require.True(t, looksLikeObjectName("Custom__c"))
	require.False(t, looksLikeObjectName("account"))
	require.False(t, looksLikeObjectName("See Also"))
	require.False(t, looksLikeObjectName(""))
}
