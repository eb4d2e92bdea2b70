// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── kv/              # Durable key-value records (offline content)
//	├── settings/        # User preferences
//	└── syncprogress/    # Progress of offline download runs
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./quran-offline.db")
//
//	records := kv.NewRepository(db.DB)
//	progress := syncprogress.NewRepository(db.DB)
//
//	value, err := records.Get(ctx, "offline_metadata")
//
// # Interface Implementations
//
//   - kv.Repository: implements offline.KeyValueStore
//   - settings.Repository: implements settingsstore.Repository
//   - syncprogress.Repository: implements downloads.ProgressReporter
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
