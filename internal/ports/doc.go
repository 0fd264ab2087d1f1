// Package ports defines interfaces between layers in the hexagonal architecture.
// Service ports are implemented by the application layer and called by inbound
// adapters (HTTP handlers, the ingest CLI). Capability ports (Validator,
// Transformer, Notifier, StorageHandler) make up a Strategy and are implemented
// by outbound adapters. Client ports are implemented by outbound clients and
// called by those adapters.
package ports
