package database

import (
	"errors"
	"strings"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var defaultRoomTypes = []models.RoomType{
	{Name: "Standard", Description: "Standard room", BasePrice: decimal.NewFromInt(1200)},
	{Name: "Superior", Description: "Superior room", BasePrice: decimal.NewFromInt(1600)},
	{Name: "Deluxe", Description: "Deluxe room", BasePrice: decimal.NewFromInt(2200)},
	{Name: "Family", Description: "Connecting family room", BasePrice: decimal.NewFromInt(3000)},
}

// Seed inserts the default room types on an empty store and makes sure the
// bootstrap admin can sign in.
func Seed(db *gorm.DB, adminEmail string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RoomType{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			roomTypes := append([]models.RoomType(nil), defaultRoomTypes...)
			if err := tx.Create(&roomTypes).Error; err != nil {
				return err
			}
		}

		adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
		if adminEmail == "" {
			return nil
		}
		var admin models.Profile
		err := tx.Where("email = ?", adminEmail).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			admin = models.Profile{Name: "Administrator", Email: adminEmail, Role: models.RoleAdmin}
			return tx.Create(&admin).Error
		}
		return err
	})
}
