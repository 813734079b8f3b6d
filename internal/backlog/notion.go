// Package backlog imports scope-item backlogs into assessments, either
// from a Notion database or from a CSV export.
package backlog

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/pkg/notion"
)

// NotionOptions tunes which rows an import pulls and how it records them.
type NotionOptions struct {
	// Status limits the pull to rows in this workflow status. Empty pulls
	// every row.
	Status string
	// MarkAs flips imported rows to this status afterwards. Empty leaves
	// rows untouched.
	MarkAs string
}

// NotionImporter pulls scope items from a Notion backlog database.
//
// Property mapping: title -> item name, rich-text "Detail" -> detail,
// select "Category" -> category, checkbox "Needed" -> is-needed, number
// "Confidence" -> justification, select "Size" -> requested size.
type NotionImporter struct {
	client notion.Client
	dbID   string
	opts   NotionOptions
}

// NewNotionImporter builds an importer for one backlog database.
func NewNotionImporter(client notion.Client, dbID string, opts NotionOptions) *NotionImporter {
	return &NotionImporter{client: client, dbID: dbID, opts: opts}
}

// Import pulls the backlog rows and assembles an assessment. Rows missing
// a title or carrying an unknown category are skipped with a warning; a
// pull that yields no usable items is an error.
func (imp *NotionImporter) Import(ctx context.Context, client, title string) (*model.Assessment, error) {
	var pages []notionapi.Page
	var err error
	if imp.opts.Status != "" {
		pages, err = notion.QueryByStatus(ctx, imp.client, imp.dbID, imp.opts.Status)
	} else {
		pages, err = notion.QueryAll(ctx, imp.client, imp.dbID, nil)
	}
	if err != nil {
		return nil, eris.Wrap(err, "backlog: query notion database")
	}

	var items []model.ScopeItem
	var imported []notionapi.ObjectID
	for _, p := range pages {
		item, err := parseItemPage(p)
		if err != nil {
			zap.L().Warn("backlog: skipping malformed scope row",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		items = append(items, item)
		imported = append(imported, p.ID)
	}

	if len(items) == 0 {
		return nil, eris.New("backlog: database yielded no scope items")
	}

	if imp.opts.MarkAs != "" {
		for _, id := range imported {
			if err := notion.MarkStatus(ctx, imp.client, string(id), imp.opts.MarkAs); err != nil {
				zap.L().Warn("backlog: could not update row status",
					zap.String("page_id", string(id)),
					zap.Error(err),
				)
			}
		}
	}

	zap.L().Info("imported backlog",
		zap.String("client", client),
		zap.Int("items", len(items)),
		zap.Int("skipped", len(pages)-len(items)),
	)

	return &model.Assessment{
		Client: client,
		Title:  title,
		Items:  items,
	}, nil
}

func parseItemPage(p notionapi.Page) (model.ScopeItem, error) {
	item := model.ScopeItem{IsNeeded: true}

	for name, prop := range p.Properties {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			item.ID = plainText(tp.Title)
			continue
		}
		switch name {
		case "Detail":
			if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
				item.Detail = plainText(rtp.RichText)
			}
		case "Category":
			if sp, ok := prop.(*notionapi.SelectProperty); ok {
				cat, ok := model.ParseCategory(sp.Select.Name)
				if !ok {
					return item, eris.Errorf("unknown category %q", sp.Select.Name)
				}
				item.Category = cat
			}
		case "Needed":
			if cp, ok := prop.(*notionapi.CheckboxProperty); ok {
				item.IsNeeded = cp.Checkbox
			}
		case "Confidence":
			if np, ok := prop.(*notionapi.NumberProperty); ok {
				item.Justification = np.Number
			}
		case "Size":
			if sp, ok := prop.(*notionapi.SelectProperty); ok {
				item.RequestedSize = sp.Select.Name
			}
		}
	}

	if item.ID == "" {
		return item, eris.New("missing item title")
	}
	if !item.Category.Valid() {
		return item, eris.New("missing Category property")
	}
	return item, nil
}

func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
