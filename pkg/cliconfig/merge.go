package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.CassetteDir != "" {
		target.CassetteDir = source.CassetteDir
		target.Sources["cassetteDir"] = sourceType
	}
	if source.CassetteFile != "" {
		target.CassetteFile = source.CassetteFile
		target.Sources["cassetteFile"] = sourceType
	}
	if source.Mode != "" {
		target.Mode = source.Mode
		target.Sources["mode"] = sourceType
	}
	if source.Strictness != "" {
		target.Strictness = source.Strictness
		target.Sources["strictness"] = sourceType
	}
	if source.Default != "" {
		target.Default = source.Default
		target.Sources["default"] = sourceType
	}
	if len(source.StubFiles) > 0 {
		target.StubFiles = append([]string(nil), source.StubFiles...)
		target.Sources["stubFiles"] = sourceType
	}
	if source.Timeout != 0 {
		target.Timeout = source.Timeout
		target.Sources["timeout"] = sourceType
	}
	if source.RedirectLimit != 0 || isSet(source, "redirectLimit") {
		target.RedirectLimit = source.RedirectLimit
		target.Sources["redirectLimit"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	// For booleans, checking `if source.X` cannot detect an explicit false.
	// SetFields (populated during file loading) tells whether the key was
	// present; without it only true values are merged.
	if boolIsSet(source, "gzip") {
		target.Gzip = source.Gzip
		target.Sources["gzip"] = sourceType
	}
	if boolIsSet(source, "json") {
		target.JSON = source.JSON
		target.Sources["json"] = sourceType
	}
}

// isSet reports whether the YAML key was explicitly present in the source.
func isSet(cfg *CLIConfig, yamlKey string) bool {
	return cfg.SetFields != nil && cfg.SetFields[yamlKey]
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config. Without SetFields it falls back to
// treating true as "set".
func boolIsSet(cfg *CLIConfig, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "gzip":
		return cfg.Gzip
	case "json":
		return cfg.JSON
	}
	return false
}
