package humautil

import "github.com/danielgtaylor/huma/v2"

// Config is huma.DefaultConfig with {"error"} bodies, no $schema links and a bearer scheme.
func Config(title, version string) huma.Config {
	Install()

	cfg := huma.DefaultConfig(title, version)
	cfg.CreateHooks = nil
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	return cfg
}
