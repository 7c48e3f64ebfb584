// Package integration contains the Integration bounded context.
// This context keeps locally edited catalog entities in step with an external
// e-commerce platform.
//
// Key concepts:
//   - Connection: Credentials and endpoint of a tenant's remote shop
//   - SyncableEntity: A product or category mirrored on the remote shop
//   - URLAlias: The remote slug namespace entry pointing at an entity
//   - SyncAttempt: Ordered record of the steps one synchronization run took
//   - RemoteCatalog: Port interface for the remote platform's REST resources
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
