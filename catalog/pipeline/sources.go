package pipeline

import (
	"context"
	"errors"

	"sfcatalog/catalog"
	"sfcatalog/lib/scrapers/describe"
	"sfcatalog/lib/scrapers/objectref"
)

// DocsSource feeds the pipeline from the object-reference documentation
// scraper.
type DocsSource struct {
	Client *objectref.Client
}

func (s DocsSource) ListObjects(ctx context.Context) ([]Candidate, error) {
	pages, err := s.Client.ListObjects(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, len(pages))
	for i, page := range pages {
		candidates[i] = Candidate{
			Name:      page.Name,
			Cloud:     page.Cloud,
			SourceURL: page.URL,
		}
	}
	return candidates, nil
}

func (s DocsSource) FetchObject(ctx context.Context, cand Candidate) (catalog.ObjectRecord, error) {
	doc, err := s.Client.FetchObject(ctx, objectref.ObjectPage{
		Name:  cand.Name,
		Cloud: cand.Cloud,
		URL:   cand.SourceURL,
	})
	if err != nil {
		return catalog.ObjectRecord{}, err
	}

	properties := make(map[string]catalog.FieldDescriptor, len(doc.Fields))
	for _, field := range doc.Fields {
		properties[field.Name] = catalog.FieldDescriptor{
			Type:        catalog.Normalize(field.Type),
			Description: field.Description,
			Format:      catalog.FormatFor(field.Type),
		}
	}
	return catalog.ObjectRecord{
		Name:        doc.Name,
		Description: doc.Description,
		Module:      doc.Cloud,
		SourceURL:   doc.URL,
		AccessRules: doc.AccessRules,
		Properties:  properties,
	}, nil
}

// DescribeSource feeds the pipeline from a live org's schema service.
// Cloud names the cloud/module the described objects are filed under.
// Login rejection is marked fatal: skipping objects cannot fix a broken
// session.
type DescribeSource struct {
	Client *describe.Client
	Cloud  string
}

func (s DescribeSource) ListObjects(ctx context.Context) ([]Candidate, error) {
	listing, err := s.Client.DescribeGlobal(ctx)
	if err != nil {
		return nil, wrapAuth(err)
	}
	var candidates []Candidate
	for _, obj := range listing {
		candidates = append(candidates, Candidate{
			Name:      obj.Name,
			Cloud:     s.Cloud,
			KeyPrefix: obj.KeyPrefix,
			Label:     obj.Label,
		})
	}
	return candidates, nil
}

func (s DescribeSource) FetchObject(ctx context.Context, cand Candidate) (catalog.ObjectRecord, error) {
	desc, err := s.Client.Describe(ctx, cand.Name)
	if err != nil {
		return catalog.ObjectRecord{}, wrapAuth(err)
	}
	record := desc.ToRecord()
	record.Module = cand.Cloud
	return record, nil
}

func wrapAuth(err error) error {
	if errors.Is(err, describe.ErrLoginDisabled) {
		return Fatal(err)
	}
	return err
}
