package database

import (
	"venuecap/internal/holds"
	"venuecap/internal/resources"
	"venuecap/internal/users"
	"venuecap/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&resources.Resource{},
		&holds.Hold{},
		&waitlist.WaitlistEntry{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
