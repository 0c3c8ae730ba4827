package database

// Storage abstracts the persistence backend handed to the router and
// handlers. The concrete implementation is the GORM/PostgreSQL store.
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() interface{}
}
