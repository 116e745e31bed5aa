package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/groblegark/confpub/internal/events"
	"github.com/groblegark/confpub/internal/model"
)

// ExportFormatVersion tags the product export bundle format.
const ExportFormatVersion = "1"

// ConfigExport bundles the current snapshots of one config kind.
type ConfigExport struct {
	Draft     *model.ConfigRecord `json:"draft,omitempty"`
	Published *model.ConfigRecord `json:"published,omitempty"`
}

// ProductExport is the export/import bundle for one product: the current
// draft and published snapshots of every kind it has.
type ProductExport struct {
	Version    string                   `json:"version"`
	ProductID  string                   `json:"product_id"`
	ExportedAt time.Time                `json:"exported_at"`
	Configs    map[string]*ConfigExport `json:"configs"`
}

// ExportProduct bundles the product's current records. Products with no
// records export an empty bundle, not an error.
func (e *Engine) ExportProduct(ctx context.Context, productID string) (*ProductExport, error) {
	records, err := e.store.ListRecords(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", productID, err)
	}

	bundle := &ProductExport{
		Version:    ExportFormatVersion,
		ProductID:  productID,
		ExportedAt: time.Now().UTC(),
		Configs:    make(map[string]*ConfigExport),
	}
	for _, r := range records {
		ce := bundle.Configs[r.ConfigKind]
		if ce == nil {
			ce = &ConfigExport{}
			bundle.Configs[r.ConfigKind] = ce
		}
		switch r.Status {
		case model.StatusDraft:
			ce.Draft = r
		case model.StatusPublished:
			ce.Published = r
		}
	}
	return bundle, nil
}

// ImportProduct seeds or overwrites the product's configs from a bundle.
// Each kind is driven through the ordinary engine operations: the bundled
// document becomes a draft write, followed by a publish when the bundle
// carries a published snapshot. Versions are re-minted locally so the
// at-most-one invariant and the append-only history both hold on the
// importing side. Returns the kinds that were imported, sorted.
func (e *Engine) ImportProduct(ctx context.Context, productID string, bundle *ProductExport, actor Actor) ([]string, error) {
	if bundle == nil {
		ve := &model.ValidationError{}
		ve.Add("bundle", "is required")
		return nil, ve
	}
	if bundle.Version != "" && bundle.Version != ExportFormatVersion {
		ve := &model.ValidationError{}
		ve.Add("version", fmt.Sprintf("unsupported export format %q", bundle.Version))
		return nil, ve
	}

	kinds := make([]string, 0, len(bundle.Configs))
	for kind := range bundle.Configs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var imported []string
	for _, kind := range kinds {
		ce := bundle.Configs[kind]
		if ce == nil || (ce.Draft == nil && ce.Published == nil) {
			continue
		}
		key := model.OwnerKey{ProductID: productID, ConfigKind: kind}

		// The draft snapshot wins as the editable state; a published-only
		// bundle entry seeds the draft from the published document.
		doc := documentFrom(ce.Draft)
		if doc == nil {
			doc = documentFrom(ce.Published)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal %s document: %w", key, err)
		}

		if _, err := e.CreateOrUpdateDraft(ctx, key, raw, actor); err != nil {
			return nil, fmt.Errorf("import %s: %w", key, err)
		}
		if ce.Published != nil {
			// Publish the published snapshot's document, even when the
			// bundle also carried a newer draft.
			if ce.Draft != nil && !ce.Published.Data.Equal(ce.Draft.Data) {
				pubRaw, err := json.Marshal(documentFrom(ce.Published))
				if err != nil {
					return nil, fmt.Errorf("marshal %s published document: %w", key, err)
				}
				if _, err := e.CreateOrUpdateDraft(ctx, key, pubRaw, actor); err != nil {
					return nil, fmt.Errorf("import %s: %w", key, err)
				}
				if _, err := e.Publish(ctx, key, actor); err != nil {
					return nil, fmt.Errorf("import publish %s: %w", key, err)
				}
				// Restore the bundle's draft as the editable state.
				if _, err := e.CreateOrUpdateDraft(ctx, key, raw, actor); err != nil {
					return nil, fmt.Errorf("import %s: %w", key, err)
				}
			} else {
				if _, err := e.Publish(ctx, key, actor); err != nil {
					return nil, fmt.Errorf("import publish %s: %w", key, err)
				}
			}
		}
		imported = append(imported, kind)
	}

	if len(imported) > 0 {
		e.publish(ctx, events.TopicProductImported, events.ProductImported{ProductID: productID, Kinds: imported})
	}
	return imported, nil
}

// documentFrom extracts the document snapshot from a bundled record.
func documentFrom(rec *model.ConfigRecord) *model.ConfigDocument {
	if rec == nil {
		return nil
	}
	return rec.Data.Clone()
}
