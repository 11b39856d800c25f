package database

import "devconnector/internal/models"

// PersistentModels lists the tables AutoMigrate manages. Keep it in step with
// the SQL migrations.
func PersistentModels() []any {
	return []any{&models.User{}, &models.Profile{}, &models.Post{}}
}
