// Package file provides file-based configuration and prompt storage
// under the ledgerlens config directory (~/.ledgerlens by default).
package file
