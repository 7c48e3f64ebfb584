package ecommerce

import (
	"bytes"
	"encoding/json"
	"strings"
)

// flexString accepts JSON strings, numbers and booleans. The platform is not
// consistent about quoting ids, flags and prices.
type flexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(strings.Trim(string(data), `"`))
	return nil
}

// String returns the raw value
func (s flexString) String() string {
	return string(s)
}

// Bool interprets "1"/"true" as true
func (s flexString) Bool() bool {
	switch strings.ToLower(string(s)) {
	case "1", "true":
		return true
	default:
		return false
	}
}

// resourceRef is the {"id": ..., "href": ...} reference used for relations
type resourceRef struct {
	ID   flexString `json:"id"`
	Href string     `json:"href,omitempty"`
}

func ref(id string) *resourceRef {
	return &resourceRef{ID: flexString(id)}
}

func (r *resourceRef) id() string {
	if r == nil {
		return ""
	}
	return r.ID.String()
}

// listResponse is the paged collection shape
type listResponse[T any] struct {
	Items    []T        `json:"items"`
	Page     flexString `json:"page,omitempty"`
	PageSize flexString `json:"limit,omitempty"`
	Count    flexString `json:"count,omitempty"`
}

// ShoprenterLanguage is a language resource
type ShoprenterLanguage struct {
	ID   flexString `json:"id"`
	Code string     `json:"code"`
	Name string     `json:"name"`
}

// ShoprenterDescription is a product or category description. Text fields
// carry no omitempty: cleared fields must be sent as empty strings.
type ShoprenterDescription struct {
	ID               flexString   `json:"id,omitempty"`
	Name             string       `json:"name"`
	MetaTitle        string       `json:"metaTitle"`
	MetaKeywords     string       `json:"metaKeywords"`
	MetaDescription  string       `json:"metaDescription"`
	ShortDescription string       `json:"shortDescription"`
	Description      string       `json:"description"`
	Language         *resourceRef `json:"language,omitempty"`
	Product          *resourceRef `json:"product,omitempty"`
	Category         *resourceRef `json:"category,omitempty"`
}

// ShoprenterTag is a product tag row
type ShoprenterTag struct {
	ID       flexString   `json:"id,omitempty"`
	Tags     string       `json:"tags"`
	Product  *resourceRef `json:"product,omitempty"`
	Language *resourceRef `json:"language,omitempty"`
}

// ShoprenterURLAlias is an entry of the alias namespace
type ShoprenterURLAlias struct {
	ID             flexString   `json:"id,omitempty"`
	Type           string       `json:"type,omitempty"`
	URLAlias       string       `json:"urlAlias"`
	URLAliasEntity *resourceRef `json:"urlAliasEntity,omitempty"`
}

// ShoprenterEntityExtend is the extended read of a product or category
type ShoprenterEntityExtend struct {
	ID                   flexString              `json:"id"`
	SKU                  string                  `json:"sku,omitempty"`
	Status               flexString              `json:"status"`
	SortOrder            flexString              `json:"sortOrder"`
	Price                flexString              `json:"price,omitempty"`
	ProductDescriptions  []ShoprenterDescription `json:"productDescriptions,omitempty"`
	CategoryDescriptions []ShoprenterDescription `json:"categoryDescriptions,omitempty"`
	URLAliases           []ShoprenterURLAlias    `json:"urlAliases,omitempty"`
	ProductTags          []ShoprenterTag         `json:"productTags,omitempty"`
}

// shoprenterErrorBody is the error document returned with 4xx answers
type shoprenterErrorBody struct {
	Error   flexString `json:"error"`
	Message string     `json:"message"`
	ID      flexString `json:"id"`
}
