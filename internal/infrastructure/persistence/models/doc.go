// Package models holds the GORM models of the commerce tables. Repositories
// convert them with ToDomain/FromDomain; the integration domain package never
// sees GORM tags.
//
// Tables:
//   - commerce_connections: shop credentials per tenant
//   - catalog_entities: products and categories with their sync ledger columns
//   - entity_descriptions, product_tags: per-language content
//   - tax_class_mappings: local VAT class to remote tax class
package models
