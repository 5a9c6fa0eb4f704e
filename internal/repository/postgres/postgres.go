package postgres

import (
	"database/sql"

	"buyback-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CatalogRepository
	repository.QuoteRepository
	repository.OrderRepository
	repository.ShipmentRepository
	repository.OutboxRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		CatalogRepository:  NewCatalogRepository(db),
		QuoteRepository:    NewQuoteRepository(db),
		OrderRepository:    NewOrderRepository(db),
		ShipmentRepository: NewShipmentRepository(db),
		OutboxRepository:   NewOutboxRepository(db),
	}
}
