// Package google provides shared utilities for calling Google Cloud APIs.
//
// This package contains common code used by the Vertex AI adapters:
//   - TokenSource adapter for integrating a CredentialProvider with Google API clients
//   - HTTP client construction with automatic token injection
//   - Conversion of Google API errors into domain provider errors
package google
