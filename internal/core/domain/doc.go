// Package domain defines the core domain models for the esriagol gateway:
// service definitions, client records, and the structured error taxonomy
// shared by all layers.
package domain
