// Package security provides the capability model for plugin scripts.
//
// Capabilities are permissions a plugin declares in its manifest. The model
// is hierarchical: granting a parent capability (e.g. "document") implicitly
// grants its children ("document.read", "document.write").
//
// Capabilities:
//   - document.read: read the current block's type and text
//   - document.write: insert text and set properties
//   - log: write to the session log through print
//
// Example usage:
//
//	caps, err := security.ParseSet([]string{"document.read", "log"})
//	if err != nil {
//	    // unknown capability
//	}
//	if err := caps.Require(security.CapabilityWrite, "insert_text"); err != nil {
//	    // denied
//	}
package security
