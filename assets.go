package formscreen

import (
	"embed"
	"io/fs"

	theme "github.com/goliatone/go-theme"
)

//go:embed assets/*.css
var embeddedAssets embed.FS

// StylesheetAsset is the theme asset key of the default stylesheet.
const StylesheetAsset = "stylesheet"

// AssetsFS exposes the default stylesheet so Go applications can serve it
// without a front-end build step.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formscreen.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// DefaultThemeManifest describes the bundled look: design tokens consumed by
// formscreen.css and a "dark" variant. prefix is the URL the assets are
// mounted under.
func DefaultThemeManifest(prefix string) *theme.Manifest {
	return &theme.Manifest{
		Name:    "formscreen",
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-primary": "#1f6feb",
			"color-error":   "#c62828",
			"color-surface": "#ffffff",
			"color-text":    "#1b1f24",
			"radius":        "6px",
		},
		Assets: theme.Assets{
			Prefix: prefix,
			Files: map[string]string{
				StylesheetAsset: "formscreen.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color-surface": "#0d1117",
					"color-text":    "#e6edf3",
				},
			},
		},
	}
}
