package ecommerce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// resourceSet names the remote resources of an entity type
type resourceSet struct {
	base         string
	extend       string
	descriptions string
	owner        string
	aliasType    string
}

var entityResources = map[integration.EntityType]resourceSet{
	integration.EntityTypeProduct: {
		base:         "products",
		extend:       "productExtend",
		descriptions: "productDescriptions",
		owner:        "product",
		aliasType:    "PRODUCT",
	},
	integration.EntityTypeCategory: {
		base:         "categories",
		extend:       "categoryExtend",
		descriptions: "categoryDescriptions",
		owner:        "category",
		aliasType:    "CATEGORY",
	},
}

func resourcesFor(t integration.EntityType) (resourceSet, error) {
	rs, ok := entityResources[t]
	if !ok {
		return resourceSet{}, fmt.Errorf("%w: %q", integration.ErrInvalidEntityType, t)
	}
	return rs, nil
}

func entityTypeFromAlias(aliasType string) integration.EntityType {
	for t, rs := range entityResources {
		if strings.EqualFold(rs.aliasType, aliasType) {
			return t
		}
	}
	return integration.EntityType(strings.ToLower(aliasType))
}

func writeResult(resp *apiResponse, id flexString) integration.WriteResult {
	return integration.WriteResult{ID: id.String(), EmptyBody: resp.empty()}
}

// ---------------------------------------------------------------------------
// Probe and languages
// ---------------------------------------------------------------------------

// Probe performs a cheap authenticated read. An empty 200 here means the
// platform silently rejected the credentials.
func (c *ShoprenterClient) Probe(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "languages", url.Values{"limit": {"1"}}, nil)
	if err != nil {
		return err
	}
	if resp.empty() {
		return &integration.RemoteError{
			Kind:       integration.ErrAuth,
			Method:     http.MethodGet,
			Resource:   "languages",
			StatusCode: resp.status,
			Body:       fmt.Sprintf("empty response body (token auth: %t)", c.auth.UsedTokenAuth),
		}
	}
	return nil
}

// FindLanguage returns the remote language with the given code. The language
// list is fetched once per client.
func (c *ShoprenterClient) FindLanguage(ctx context.Context, code string) (*integration.RemoteLanguage, error) {
	c.languagesMu.Lock()
	defer c.languagesMu.Unlock()

	if c.languages == nil {
		resp, err := c.doRequest(ctx, http.MethodGet, "languages", url.Values{"full": {"1"}}, nil)
		if err != nil {
			return nil, err
		}
		if resp.empty() {
			return nil, emptyBodyError(http.MethodGet, "languages", resp.status)
		}
		list, err := decodeValue[listResponse[ShoprenterLanguage]](resp, http.MethodGet, "languages")
		if err != nil {
			return nil, err
		}
		c.languages = make(map[string]integration.RemoteLanguage, len(list.Items))
		for _, l := range list.Items {
			c.languages[strings.ToLower(l.Code)] = integration.RemoteLanguage{
				ID:   l.ID.String(),
				Code: l.Code,
				Name: l.Name,
			}
		}
	}

	lang, ok := c.languages[strings.ToLower(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q on shop %s", integration.ErrLanguageNotAvailable, code, c.auth.ShopName)
	}
	return &lang, nil
}

// ---------------------------------------------------------------------------
// Entity
// ---------------------------------------------------------------------------

// GetEntity performs the extended read of an entity
func (c *ShoprenterClient) GetEntity(ctx context.Context, entityType integration.EntityType, remoteID string) (*integration.RemoteEntity, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return nil, err
	}
	resource := rs.extend + "/" + remoteID
	resp, err := c.doRequest(ctx, http.MethodGet, resource, url.Values{"full": {"1"}}, nil)
	if err != nil {
		return nil, err
	}
	if resp.empty() {
		return nil, emptyBodyError(http.MethodGet, resource, resp.status)
	}
	ext, err := decodeValue[ShoprenterEntityExtend](resp, http.MethodGet, resource)
	if err != nil {
		return nil, err
	}
	return convertEntityExtend(entityType, &ext), nil
}

// UpdateEntity pushes scalar fields
func (c *ShoprenterClient) UpdateEntity(ctx context.Context, entityType integration.EntityType, remoteID string, fields integration.EntityFields) (integration.WriteResult, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return integration.WriteResult{}, err
	}
	payload := map[string]any{
		"status":    boolFlag(fields.Active),
		"sortOrder": fields.SortOrder,
	}
	if entityType == integration.EntityTypeProduct {
		if fields.SKU != "" {
			payload["sku"] = fields.SKU
		}
		if fields.Price != nil {
			payload["price"] = fields.Price.Price.StringFixed(4)
			payload["multiplier"] = fields.Price.Multiplier.StringFixed(4)
		}
		if fields.TaxClassID != "" {
			payload["taxClass"] = ref(fields.TaxClassID)
		}
	}
	resp, err := c.doRequest(ctx, http.MethodPut, rs.base+"/"+remoteID, nil, payload)
	if err != nil {
		return integration.WriteResult{}, err
	}
	return writeResult(resp, flexString(remoteID)), nil
}

// ---------------------------------------------------------------------------
// Descriptions
// ---------------------------------------------------------------------------

// FindDescription returns the description of an entity in a language
func (c *ShoprenterClient) FindDescription(ctx context.Context, entityType integration.EntityType, remoteID, languageID string) (*integration.RemoteDescription, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return nil, err
	}
	query := url.Values{
		rs.owner + "Id": {remoteID},
		"languageId":    {languageID},
		"full":          {"1"},
	}
	items, err := listItems[ShoprenterDescription](ctx, c, rs.descriptions, query)
	if err != nil {
		return nil, err
	}
	for i := range items {
		d := convertDescription(&items[i])
		if d.LanguageID == "" || d.LanguageID == languageID {
			return &d, nil
		}
	}
	return nil, nil
}

// CreateDescription creates a description, sending every text field
func (c *ShoprenterClient) CreateDescription(ctx context.Context, entityType integration.EntityType, remoteID, languageID string, d integration.Description) (integration.WriteResult, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return integration.WriteResult{}, err
	}
	payload := descriptionPayload(d)
	payload.Language = ref(languageID)
	if entityType == integration.EntityTypeProduct {
		payload.Product = ref(remoteID)
	} else {
		payload.Category = ref(remoteID)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, rs.descriptions, nil, payload)
	if err != nil {
		return integration.WriteResult{}, err
	}
	return c.createdResult(resp, rs.descriptions)
}

// UpdateDescription replaces every text field of a description
func (c *ShoprenterClient) UpdateDescription(ctx context.Context, entityType integration.EntityType, descriptionID string, d integration.Description) (integration.WriteResult, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return integration.WriteResult{}, err
	}
	resp, err := c.doRequest(ctx, http.MethodPut, rs.descriptions+"/"+descriptionID, nil, descriptionPayload(d))
	if err != nil {
		return integration.WriteResult{}, err
	}
	return writeResult(resp, flexString(descriptionID)), nil
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

// FindTag returns the tag row of a product in a language
func (c *ShoprenterClient) FindTag(ctx context.Context, productID, languageID string) (*integration.RemoteTag, error) {
	query := url.Values{
		"productId":  {productID},
		"languageId": {languageID},
		"full":       {"1"},
	}
	items, err := listItems[ShoprenterTag](ctx, c, "productTags", query)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if lang := item.Language.id(); lang == "" || lang == languageID {
			return &integration.RemoteTag{ID: item.ID.String(), LanguageID: lang, Text: item.Tags}, nil
		}
	}
	return nil, nil
}

// CreateTag creates a tag row
func (c *ShoprenterClient) CreateTag(ctx context.Context, productID, languageID, text string) (integration.WriteResult, error) {
	payload := ShoprenterTag{Tags: text, Product: ref(productID), Language: ref(languageID)}
	resp, err := c.doRequest(ctx, http.MethodPost, "productTags", nil, payload)
	if err != nil {
		return integration.WriteResult{}, err
	}
	return c.createdResult(resp, "productTags")
}

// UpdateTag replaces the tag text
func (c *ShoprenterClient) UpdateTag(ctx context.Context, tagID, text string) (integration.WriteResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "productTags/"+tagID, nil, ShoprenterTag{Tags: text})
	if err != nil {
		return integration.WriteResult{}, err
	}
	return writeResult(resp, flexString(tagID)), nil
}

// DeleteTag removes a tag row. A tag that is already gone counts as deleted.
func (c *ShoprenterClient) DeleteTag(ctx context.Context, tagID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "productTags/"+tagID, nil, nil)
	if errors.Is(err, integration.ErrRemoteNotFound) {
		return nil
	}
	return err
}

// ---------------------------------------------------------------------------
// URL aliases
// ---------------------------------------------------------------------------

// GetAlias reads an alias by id; (nil, nil) when it does not exist
func (c *ShoprenterClient) GetAlias(ctx context.Context, aliasID string) (*integration.URLAlias, error) {
	resource := "urlAliases/" + aliasID
	resp, err := c.doRequest(ctx, http.MethodGet, resource, nil, nil)
	if errors.Is(err, integration.ErrRemoteNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.empty() {
		return nil, emptyBodyError(http.MethodGet, resource, resp.status)
	}
	alias, err := decodeValue[ShoprenterURLAlias](resp, http.MethodGet, resource)
	if err != nil {
		return nil, err
	}
	out := convertAlias(&alias)
	if out.ID == "" {
		out.ID = aliasID
	}
	return &out, nil
}

// FindAliasBySlug searches the alias namespace of an entity type. Only exact
// slug matches are returned.
func (c *ShoprenterClient) FindAliasBySlug(ctx context.Context, entityType integration.EntityType, slug string) (*integration.URLAlias, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"urlAlias": {slug},
		"type":     {rs.aliasType},
		"full":     {"1"},
	}
	items, err := listItems[ShoprenterURLAlias](ctx, c, "urlAliases", query)
	if err != nil {
		return nil, err
	}
	for i := range items {
		alias := convertAlias(&items[i])
		if alias.Slug == slug && (alias.EntityType == entityType || items[i].Type == "") {
			alias.EntityType = entityType
			return &alias, nil
		}
	}
	return nil, nil
}

// CreateAlias creates an alias. A taken slug fails with ErrRemoteConflict.
func (c *ShoprenterClient) CreateAlias(ctx context.Context, entityType integration.EntityType, ownerID, slug string) (*integration.URLAlias, error) {
	rs, err := resourcesFor(entityType)
	if err != nil {
		return nil, err
	}
	payload := ShoprenterURLAlias{Type: rs.aliasType, URLAlias: slug, URLAliasEntity: ref(ownerID)}
	resp, err := c.doRequest(ctx, http.MethodPost, "urlAliases", nil, payload)
	if err != nil {
		return nil, err
	}

	out := &integration.URLAlias{Slug: slug, EntityType: entityType, OwnerID: ownerID}
	if resp.empty() {
		return out, nil
	}
	created, err := decodeValue[ShoprenterURLAlias](resp, http.MethodPost, "urlAliases")
	if err != nil {
		return nil, err
	}
	out.ID = created.ID.String()
	return out, nil
}

// UpdateAliasSlug changes only the slug of an alias
func (c *ShoprenterClient) UpdateAliasSlug(ctx context.Context, aliasID, slug string) (integration.WriteResult, error) {
	payload := map[string]string{"urlAlias": slug}
	resp, err := c.doRequest(ctx, http.MethodPut, "urlAliases/"+aliasID, nil, payload)
	if err != nil {
		return integration.WriteResult{}, err
	}
	return writeResult(resp, flexString(aliasID)), nil
}

// DeleteAlias removes an alias. An alias that is already gone counts as deleted.
func (c *ShoprenterClient) DeleteAlias(ctx context.Context, aliasID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "urlAliases/"+aliasID, nil, nil)
	if errors.Is(err, integration.ErrRemoteNotFound) {
		return nil
	}
	return err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// listItems runs a collection query. An empty body is treated as no match.
func listItems[T any](ctx context.Context, c *ShoprenterClient, resource string, query url.Values) ([]T, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, resource, query, nil)
	if err != nil {
		return nil, err
	}
	if resp.empty() {
		return nil, nil
	}
	list, err := decodeValue[listResponse[T]](resp, http.MethodGet, resource)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// createdResult extracts the id of a created resource
func (c *ShoprenterClient) createdResult(resp *apiResponse, resource string) (integration.WriteResult, error) {
	if resp.empty() {
		return integration.WriteResult{EmptyBody: true}, nil
	}
	created, err := decodeValue[struct {
		ID flexString `json:"id"`
	}](resp, http.MethodPost, resource)
	if err != nil {
		return integration.WriteResult{}, err
	}
	return writeResult(resp, created.ID), nil
}

func descriptionPayload(d integration.Description) ShoprenterDescription {
	return ShoprenterDescription{
		Name:             d.Name,
		MetaTitle:        d.MetaTitle,
		MetaKeywords:     d.MetaKeywords,
		MetaDescription:  d.MetaDescription,
		ShortDescription: d.ShortDescription,
		Description:      d.Body,
	}
}

func convertDescription(d *ShoprenterDescription) integration.RemoteDescription {
	return integration.RemoteDescription{
		ID:               d.ID.String(),
		LanguageID:       d.Language.id(),
		Name:             d.Name,
		MetaTitle:        d.MetaTitle,
		MetaKeywords:     d.MetaKeywords,
		MetaDescription:  d.MetaDescription,
		ShortDescription: d.ShortDescription,
		Body:             d.Description,
	}
}

func convertAlias(a *ShoprenterURLAlias) integration.URLAlias {
	return integration.URLAlias{
		ID:         a.ID.String(),
		Slug:       a.URLAlias,
		EntityType: entityTypeFromAlias(a.Type),
		OwnerID:    a.URLAliasEntity.id(),
	}
}

func convertEntityExtend(entityType integration.EntityType, ext *ShoprenterEntityExtend) *integration.RemoteEntity {
	out := &integration.RemoteEntity{
		ID:     ext.ID.String(),
		Type:   entityType,
		SKU:    ext.SKU,
		Active: ext.Status.Bool(),
	}
	if n, err := strconv.Atoi(ext.SortOrder.String()); err == nil {
		out.SortOrder = n
	}
	if p, err := decimal.NewFromString(ext.Price.String()); err == nil {
		out.Price = p
	}

	descriptions := ext.ProductDescriptions
	if entityType == integration.EntityTypeCategory {
		descriptions = ext.CategoryDescriptions
	}
	for i := range descriptions {
		out.Descriptions = append(out.Descriptions, convertDescription(&descriptions[i]))
	}
	for i := range ext.URLAliases {
		alias := convertAlias(&ext.URLAliases[i])
		if alias.EntityType == "" {
			alias.EntityType = entityType
		}
		if alias.OwnerID == "" {
			alias.OwnerID = out.ID
		}
		out.Aliases = append(out.Aliases, alias)
	}
	for _, t := range ext.ProductTags {
		out.Tags = append(out.Tags, integration.RemoteTag{ID: t.ID.String(), LanguageID: t.Language.id(), Text: t.Tags})
	}
	return out
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
