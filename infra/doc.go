// Package infra holds the adapters behind the dispatch core: CSV loading,
// the chat-completion clients, the MQTT fleet bridge, metrics sinks and the
// zerolog logger. Core packages never import infra; the app package wires
// the two together.
package infra
