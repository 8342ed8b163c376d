package repository

import (
	"gorm.io/gorm"

	"restaurant-service/internal/model"
)

// Stores bundles one repository per entity.
type Stores struct {
	MenuItems     Repository[*model.MenuItem]
	Modifiers     Repository[*model.Modifier]
	Tables        Repository[*model.Table]
	Waitlist      Repository[*model.WaitlistEntry]
	Reservations  Repository[*model.Reservation]
	Orders        Repository[*model.Order]
	Bills         Repository[*model.Bill]
	QRCodes       Repository[*model.QRCode]
	Notifications Repository[*model.Notification]
}

// NewMemoryStores returns empty in-process stores.
func NewMemoryStores() *Stores {
	return &Stores{
		MenuItems:     NewMemory[*model.MenuItem]("menu item"),
		Modifiers:     NewMemory[*model.Modifier]("modifier"),
		Tables:        NewMemory[*model.Table]("table"),
		Waitlist:      NewMemory[*model.WaitlistEntry]("waitlist entry"),
		Reservations:  NewMemory[*model.Reservation]("reservation"),
		Orders:        NewMemory[*model.Order]("order"),
		Bills:         NewMemory[*model.Bill]("bill"),
		QRCodes:       NewMemory[*model.QRCode]("qr code"),
		Notifications: NewMemory[*model.Notification]("notification"),
	}
}

// NewGormStores returns stores backed by db. The schema must already be
// migrated with model.All.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		MenuItems:     NewGorm(db, "menu item", "id", func() *model.MenuItem { return &model.MenuItem{} }),
		Modifiers:     NewGorm(db, "modifier", "id", func() *model.Modifier { return &model.Modifier{} }),
		Tables:        NewGorm(db, "table", "id", func() *model.Table { return &model.Table{} }),
		Waitlist:      NewGorm(db, "waitlist entry", "id", func() *model.WaitlistEntry { return &model.WaitlistEntry{} }),
		Reservations:  NewGorm(db, "reservation", "id", func() *model.Reservation { return &model.Reservation{} }),
		Orders:        NewGorm(db, "order", "id", func() *model.Order { return &model.Order{} }),
		Bills:         NewGorm(db, "bill", "id", func() *model.Bill { return &model.Bill{} }),
		QRCodes:       NewGorm(db, "qr code", "code", func() *model.QRCode { return &model.QRCode{} }),
		Notifications: NewGorm(db, "notification", "id", func() *model.Notification { return &model.Notification{} }),
	}
}
