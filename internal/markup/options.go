package markup

// CodeTag maps a legacy code tag to the language class given to its
// prettified block. An empty Class means no language hint.
type CodeTag struct {
	Tag   string
	Class string
}

// Options selects and parameterises the rewrite rules. A rule runs only when
// its enabling field is set.
type Options struct {
	// ExternalDomain enables rewriting http://<domain>/... targets to root-relative paths.
	ExternalDomain string
	// FilesBasePath enables moving LegacyFilesPrefix targets under this path.
	FilesBasePath      string
	LegacyFilesPrefix  string
	LightboxMigration  bool
	OrphanPreviewWrap  bool
	CodeRestructuring  bool
	GalleryReport      bool
	ObjectParagraphFix bool

	OverlayClass  string
	GalleryMarker string
	// CodeTags are processed in slice order.
	CodeTags []CodeTag
}

// DefaultCodeTags lists the code tags of the legacy syntax highlighter.
func DefaultCodeTags() []CodeTag {
	return []CodeTag{
		{Tag: "code"},
		{Tag: "javascript", Class: "lang-js"},
		{Tag: "cpp", Class: "lang-cpp"},
		{Tag: "php", Class: "lang-php"},
		{Tag: "drupal6", Class: "lang-php"},
		{Tag: "qt", Class: "lang-cpp"},
		{Tag: "bash", Class: "lang-bsh"},
	}
}

// DefaultOptions returns the rule parameters with every rule disabled.
func DefaultOptions() Options {
	return Options{
		LegacyFilesPrefix: "/sites/default/files",
		OverlayClass:      "magnific",
		GalleryMarker:     "image/image_galleries",
		CodeTags:          DefaultCodeTags(),
	}
}
