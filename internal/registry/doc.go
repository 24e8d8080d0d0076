// Package registry persists the two gateway registries (services and
// clients) as whole JSON documents.
//
// A DocumentStore holds one opaque document and supports atomic
// whole-document replacement; typed repositories on top of it decode,
// validate, and mutate the registries. Two store implementations exist:
// a JSON file with temp-file-and-rename publication (plus an fsnotify
// watcher so external edits are picked up without a restart), and a
// Badger-backed store using one transactional key per document.
package registry
