package board

import (
	"log"

	"github.com/interniverse/backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "board"); err != nil {
		log.Fatal("Failed to ensure schema board: ", err)
	}

	if err := db.DB.AutoMigrate(&Listing{}, &Comment{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
