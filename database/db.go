package database

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/lib/pq"

	"github.com/minitug/reckon/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database connection error: %v", err)
		return nil, err
	}
	err = createInvoiceTable(db)
	if err != nil {
		return nil, err
	}
	err = createBankTransactionTable(db)
	if err != nil {
		return nil, err
	}
	err = createMatchTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createInvoiceTable creates the invoices table in the database if it doesn't exist.
func createInvoiceTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS invoices (
			id BIGSERIAL PRIMARY KEY,
			invoice_id TEXT NOT NULL UNIQUE,
			entity TEXT NOT NULL,
			partner TEXT NOT NULL DEFAULT '',
			invoice_no TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'revenue',
			amount DOUBLE PRECISION NOT NULL,
			net_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			vat_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'EUR',
			date TIMESTAMPTZ NOT NULL,
			match_id TEXT
		)
	`)
	return err
}

// createBankTransactionTable creates the bank_transactions table in the database if it doesn't exist.
func createBankTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bank_transactions (
			id BIGSERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			entity TEXT NOT NULL,
			partner TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT '',
			direction TEXT NOT NULL DEFAULT 'in',
			amount DOUBLE PRECISION NOT NULL,
			currency TEXT NOT NULL DEFAULT 'EUR',
			date TIMESTAMPTZ NOT NULL,
			is_psp_candidate BOOLEAN NOT NULL DEFAULT FALSE,
			match_id TEXT
		)
	`)
	return err
}

// createMatchTable creates the matches table in the database if it doesn't exist.
func createMatchTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			match_id TEXT NOT NULL UNIQUE,
			rule TEXT NOT NULL,
			invoice_ids TEXT[] NOT NULL,
			bank_ids TEXT[] NOT NULL,
			matched_amount DOUBLE PRECISION NOT NULL,
			fee_applied DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}
