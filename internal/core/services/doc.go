// Package services implements the driving port interfaces.
//
// The chat pipeline is assembled here: Indexer (chunk, embed, index),
// Retriever, Composer and the Session that ties them together for one
// document. Services depend only on domain types and ports.
package services
