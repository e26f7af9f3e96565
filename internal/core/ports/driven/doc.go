// Package driven defines the outbound ports: interfaces the core
// depends on, implemented by adapters (ERP connector, search engine,
// LLM service, run store, prompt store).
package driven
