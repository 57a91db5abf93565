package configs

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Store selects where records live. The memory driver keeps everything in
// process and loses it on exit; postgres uses the Psql section.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	// SeedDefaults inserts the default admin and the starter ads into an
	// empty store on startup.
	SeedDefaults  bool   `env:"SEED_DEFAULTS" envDefault:"true"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}
