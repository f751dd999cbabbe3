// Package assets provides the stylesheets applied to converted documents.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles compiled into the binary
//	    ├── FilesystemLoader  - {dir}/{name}.css from a user styles directory
//	    └── StyleResolver     - filesystem first, embedded as fallback
//
// StyleResolver is what the converter uses: a user directory can override a
// built-in style by name, and can add new ones.
//
// The final stylesheet of a conversion is built with Stack, which joins the
// code highlighting rules, the named style and the user stylesheet in that
// order so later rules win.
//
// # Security
//
// Style names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within its
// directory.
package assets
