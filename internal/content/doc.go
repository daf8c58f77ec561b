// Package content holds the static data the app shows next to the chat.
//
// # Catalog
//
// The catalog is embedded YAML: quick suggestions, the traveller profile,
// the emergency contact card, model status and offline downloads. Parse
// rejects a document with no suggestions, an unknown download status or
// progress outside 0..100. Default parses the embedded document once.
package content
