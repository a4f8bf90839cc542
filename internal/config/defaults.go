package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/quarry/data/db/records.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/quarry/data/indices/bleve"
	}
	if cfg.Search.MaxWindow == 0 {
		cfg.Search.MaxWindow = 10000
	}
	if cfg.Search.ReindexBatchSize == 0 {
		cfg.Search.ReindexBatchSize = 500
	}
	if cfg.Search.ReindexLogEvery == 0 {
		cfg.Search.ReindexLogEvery = 5000
	}
	if cfg.Import.Extensions == nil {
		cfg.Import.Extensions = []string{".json", ".xlsx"}
	}
	if cfg.Kinds == nil {
		cfg.Kinds = map[string][]string{
			"device": {"name", "vendor", "model", "location", "serial"},
			"iface":  {"name", "device", "ip_address", "description"},
		}
	}
}
