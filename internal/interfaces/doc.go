// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the narrow interface they need next to the code that uses
// it; the concrete types live in their own packages and are wired together in
// internal/entrypoint. checks.go pins every pairing at compile time.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - KeyValueStore: raw records behind the offline store (internal/offline/store.go)
//   - OfflineStore: downloaded surahs and metadata (internal/downloads/manager.go)
//   - ValueStore: JSON values for reader state (internal/reading/service.go)
//   - Repository: settings rows (internal/settingsstore/settingsstore.go)
//
// ## Content Interfaces
//
//   - ContentSource: surah editions and tafsir (internal/resolver/resolver.go)
//   - AudioFetcher: recitation bytes (internal/downloads/manager.go)
//   - AyahSource: single ayahs for the daily pick (internal/dailyverse/selector.go)
//   - RemoteSearcher: API search per edition (internal/search/search.go)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: sync run progress (internal/downloads/manager.go)
//
// # Adding a New Content Source
//
// Anything that serves surah editions can back the resolver:
//
//	type MirrorClient struct {
//	    baseURL string
//	}
//
//	func (c *MirrorClient) SurahEdition(ctx context.Context, number int, edition string) (*entities.SurahDetail, error)
//	func (c *MirrorClient) Tafsir(ctx context.Context, surah, ayah int, edition string) (string, error)
//
//	var _ resolver.ContentSource = (*MirrorClient)(nil)
//
// Pass it to resolver.New in entrypoint/app.go.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the entity to the AutoMigrate list in database.go
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
