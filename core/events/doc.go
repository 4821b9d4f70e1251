// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - RequestEvent: new ride request entering dispatch
//   - OfferEvent: resolution of a single offer to a driver
//   - SessionEvent: terminal outcome of a dispatch session
package events
