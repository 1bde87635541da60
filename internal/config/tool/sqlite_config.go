package tool

// SQLiteConfig configures the sqlite kit.
type SQLiteConfig struct {
	Path string `json:"path"`
}

func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{Path: "example.db"}
}

// DndConfig configures the dnd kit. A zero Seed means a time-based seed.
type DndConfig struct {
	Seed int64 `json:"seed"`
}
