package update

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// ItemUpdate changes terms, statements and site links of an item.
type ItemUpdate struct {
	entityPart
	termsPart
	statementsPart
	modifiedSiteLinks map[string]model.SiteLink
	removedSiteLinks  map[string]struct{}
}

var _ TermedStatementDocumentUpdate = (*ItemUpdate)(nil)

func validateSiteLink(trace string, l model.SiteLink) error {
	if strings.TrimSpace(l.Site) == "" {
		return helper.InvalidArgument(trace, "site link site must not be blank")
	}
	if strings.TrimSpace(l.Title) == "" {
		return helper.InvalidArgument(trace, "site link title for %s must not be blank", l.Site)
	}
	for _, badge := range l.Badges {
		if err := validate.Kind(trace, "badge", badge, model.KindItem); err != nil {
			return err
		}
	}
	return validate.RealEntityIDs(trace, "badge", l.Badges)
}

func newItemUpdate(id model.EntityID, baseRevisionID int64, terms termsPart, statements diff.StatementUpdate, modified []model.SiteLink, removed []string) (*ItemUpdate, error) {
	const trace = "new item update"
	entity, err := newEntityPart(trace, id, model.KindItem, baseRevisionID)
	if err != nil {
		return nil, err
	}
	s, err := newStatementsPart(trace, id, statements)
	if err != nil {
		return nil, err
	}

	sites := make([]string, len(modified))
	for i, l := range modified {
		if err := validateSiteLink(trace, l); err != nil {
			return nil, err
		}
		sites[i] = l.Site
	}
	if err := validate.Distinct(trace, "site", sites); err != nil {
		return nil, err
	}
	for _, site := range removed {
		if strings.TrimSpace(site) == "" {
			return nil, helper.InvalidArgument(trace, "removed site must not be blank")
		}
	}
	if err := validate.Distinct(trace, "removed site", removed); err != nil {
		return nil, err
	}
	if err := validate.Disjoint(trace, "site", sites, removed); err != nil {
		return nil, err
	}

	u := &ItemUpdate{entityPart: entity, termsPart: terms, statementsPart: s}
	if len(modified) > 0 {
		u.modifiedSiteLinks = make(map[string]model.SiteLink, len(modified))
		for _, l := range modified {
			u.modifiedSiteLinks[l.Site] = l.Clone()
		}
	}
	if len(removed) > 0 {
		u.removedSiteLinks = make(map[string]struct{}, len(removed))
		for _, site := range removed {
			u.removedSiteLinks[site] = struct{}{}
		}
	}
	return u, nil
}

// ModifiedSiteLinks returns the new site links keyed by site.
func (u *ItemUpdate) ModifiedSiteLinks() map[string]model.SiteLink {
	out := make(map[string]model.SiteLink, len(u.modifiedSiteLinks))
	for site, l := range u.modifiedSiteLinks {
		out[site] = l.Clone()
	}
	return out
}

// RemovedSiteLinks returns the sites whose link is removed, sorted.
func (u *ItemUpdate) RemovedSiteLinks() []string {
	return slices.Sorted(maps.Keys(u.removedSiteLinks))
}

func (u *ItemUpdate) IsEmpty() bool {
	return u.termsPart.isEmpty() && u.statements.IsEmpty() &&
		len(u.modifiedSiteLinks) == 0 && len(u.removedSiteLinks) == 0
}

type siteLinkRemovalJSON struct {
	Remove string `json:"remove"`
	Site   string `json:"site"`
}

func (u *ItemUpdate) MarshalJSON() ([]byte, error) {
	j := updateJSON{Claims: statementsJSON(u.statements)}
	u.termsPart.toJSON(&j)
	if len(u.modifiedSiteLinks)+len(u.removedSiteLinks) > 0 {
		j.SiteLinks = map[string]any{}
		for site, l := range u.modifiedSiteLinks {
			j.SiteLinks[site] = l
		}
		for site := range u.removedSiteLinks {
			j.SiteLinks[site] = siteLinkRemovalJSON{Site: site}
		}
	}
	return json.Marshal(j)
}

// ItemUpdateBuilder accumulates changes of one item.
type ItemUpdateBuilder struct {
	entityBuilder
	termsBuilder
	statementsBuilder
	baseSiteLinks     map[string]model.SiteLink
	modifiedSiteLinks map[string]model.SiteLink
	removedSiteLinks  map[string]struct{}
}

// NewItemUpdateBuilderForEntityID creates a blind builder for the item id.
func NewItemUpdateBuilderForEntityID(id model.EntityID) (*ItemUpdateBuilder, error) {
	return NewItemUpdateBuilderForBaseRevisionID(id, 0)
}

// NewItemUpdateBuilderForBaseRevisionID creates a blind builder for changes
// based on the given revision.
func NewItemUpdateBuilderForBaseRevisionID(id model.EntityID, baseRevisionID int64) (*ItemUpdateBuilder, error) {
	const trace = "item update builder"
	entity, err := newEntityBuilder(trace, id, model.KindItem, baseRevisionID)
	if err != nil {
		return nil, err
	}
	terms, err := newTermsBuilder(trace, nil)
	if err != nil {
		return nil, err
	}
	statements, err := newStatementBuilder(id, false, nil)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &ItemUpdateBuilder{
		entityBuilder:     entity,
		termsBuilder:      terms,
		statementsBuilder: statementsBuilder{statements: statements},
		modifiedSiteLinks: map[string]model.SiteLink{},
		removedSiteLinks:  map[string]struct{}{},
	}, nil
}

// NewItemUpdateBuilderForBaseRevision creates a builder seeded with doc.
func NewItemUpdateBuilderForBaseRevision(doc *model.ItemDocument) (*ItemUpdateBuilder, error) {
	const trace = "item update builder for base revision"
	if doc == nil {
		return nil, helper.NullArgument(trace, "base revision")
	}
	entity, err := newEntityBuilderForDocument(trace, doc, model.KindItem)
	if err != nil {
		return nil, err
	}
	terms, err := newTermsBuilder(trace, doc)
	if err != nil {
		return nil, err
	}
	statements, err := newStatementBuilder(doc.ID, true, doc.Statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	base := make(map[string]model.SiteLink, len(doc.SiteLinks))
	for site, l := range doc.SiteLinks {
		if err := validateSiteLink(trace, l); err != nil {
			return nil, err
		}
		if l.Site != site {
			return nil, helper.InvalidArgument(trace, "site link of %s listed under %s", l.Site, site)
		}
		base[site] = l.Clone()
	}
	return &ItemUpdateBuilder{
		entityBuilder:     entity,
		termsBuilder:      terms,
		statementsBuilder: statementsBuilder{statements: statements},
		baseSiteLinks:     base,
		modifiedSiteLinks: map[string]model.SiteLink{},
		removedSiteLinks:  map[string]struct{}{},
	}, nil
}

// PutSiteLink sets the link of its site. Putting the current link cancels
// pending changes of that site.
func (b *ItemUpdateBuilder) PutSiteLink(l model.SiteLink) error {
	if err := validateSiteLink("put site link", l); err != nil {
		return err
	}
	delete(b.removedSiteLinks, l.Site)
	if current, ok := b.baseSiteLinks[l.Site]; ok && current.Equal(l) {
		delete(b.modifiedSiteLinks, l.Site)
		return nil
	}
	b.modifiedSiteLinks[l.Site] = l.Clone()
	return nil
}

// RemoveSiteLink removes the link of site. On a seeded builder removing a
// missing site only cancels pending changes.
func (b *ItemUpdateBuilder) RemoveSiteLink(site string) error {
	if strings.TrimSpace(site) == "" {
		return helper.InvalidArgument("remove site link", "site must not be blank")
	}
	delete(b.modifiedSiteLinks, site)
	if _, ok := b.baseSiteLinks[site]; ok || b.baseSiteLinks == nil {
		b.removedSiteLinks[site] = struct{}{}
	}
	return nil
}

// Append merges u into the pending changes. Either all of u is applied or none of it.
func (b *ItemUpdateBuilder) Append(u *ItemUpdate) error {
	const trace = "append item update"
	if u == nil {
		return helper.NullArgument(trace, "update")
	}
	if err := b.checkAppend(trace, u); err != nil {
		return err
	}
	next := b.clone()
	if err := next.termsBuilder.append(trace, u.termsPart); err != nil {
		return err
	}
	if err := next.UpdateStatements(u.statements); err != nil {
		return helper.NewError(trace, err)
	}
	for _, site := range slices.Sorted(maps.Keys(u.modifiedSiteLinks)) {
		if err := next.PutSiteLink(u.modifiedSiteLinks[site]); err != nil {
			return helper.NewError(trace, err)
		}
	}
	for _, site := range u.RemovedSiteLinks() {
		if err := next.RemoveSiteLink(site); err != nil {
			return helper.NewError(trace, err)
		}
	}
	*b = *next
	return nil
}

// AppendUpdate is Append for callers holding an EntityUpdate.
func (b *ItemUpdateBuilder) AppendUpdate(u EntityUpdate) error {
	item, ok := u.(*ItemUpdate)
	if !ok {
		return helper.InvalidArgument("append update", "expected an item update, got %T", u)
	}
	return b.Append(item)
}

func (b *ItemUpdateBuilder) clone() *ItemUpdateBuilder {
	return &ItemUpdateBuilder{
		entityBuilder:     b.entityBuilder,
		termsBuilder:      b.termsBuilder.clone(),
		statementsBuilder: b.statementsBuilder.clone(),
		baseSiteLinks:     b.baseSiteLinks,
		modifiedSiteLinks: maps.Clone(b.modifiedSiteLinks),
		removedSiteLinks:  maps.Clone(b.removedSiteLinks),
	}
}

func (b *ItemUpdateBuilder) Build() (*ItemUpdate, error) {
	const trace = "build item update"
	terms, err := b.termsBuilder.build(trace)
	if err != nil {
		return nil, err
	}
	statements, err := b.statements.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	modified := make([]model.SiteLink, 0, len(b.modifiedSiteLinks))
	for _, site := range slices.Sorted(maps.Keys(b.modifiedSiteLinks)) {
		modified = append(modified, b.modifiedSiteLinks[site])
	}
	u, err := newItemUpdate(b.id, b.baseRevisionID, terms, statements, modified, slices.Sorted(maps.Keys(b.removedSiteLinks)))
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return u, nil
}

func (b *ItemUpdateBuilder) BuildUpdate() (EntityUpdate, error) {
	u, err := b.Build()
	if err != nil {
		return nil, err
	}
	return u, nil
}
