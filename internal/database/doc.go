// Package database owns the store handle and schema migration for the
// catalog. Per-entity operations live in the subpackages (books, users,
// categories, scholars, chapters, loans, audit); each receives the shared
// *gorm.DB at construction.
package database
