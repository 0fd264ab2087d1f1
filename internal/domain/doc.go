// Package domain contains the types shared by every stage of layer processing.
// The layer tree itself lives in domain/document. This root package holds
// sentinel errors, the typed errors that wrap them, the per-layer processing
// Outcome, and the value objects that flow between a Strategy's capabilities
// (ValidationResult, TransformedLayer, Receipt, Event, Undo).
package domain
