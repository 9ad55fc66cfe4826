package repository

import (
	"database/sql"
	"fmt"
)

// Driver identifiers accepted by STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Stores bundles the two stores the services depend on.
type Stores struct {
	Users UserStore
	Books BookStore
}

// New returns the stores for driver. The mysql driver requires db.
func New(driver string, db *sql.DB) (Stores, error) {
	switch driver {
	case "", DriverMySQL:
		if db == nil {
			return Stores{}, fmt.Errorf("mysql driver requires database handle")
		}
		return Stores{Users: NewUserRepo(db), Books: NewBookRepo(db)}, nil
	case DriverMemory:
		return Stores{Users: NewMemoryUserRepo(), Books: NewMemoryBookRepo()}, nil
	default:
		return Stores{}, fmt.Errorf("unsupported store driver: %s", driver)
	}
}
