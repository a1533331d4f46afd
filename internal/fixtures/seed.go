package fixtures

import (
	"gorm.io/gorm"
)

// Seed loads the demo accounts and records into db. Rows whose id already
// exists are left alone, so seeding twice is harmless.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range Users() {
			if err := u.SetPassword(DemoPassword); err != nil {
				return err
			}
			if err := createMissing(tx, u, u.ID); err != nil {
				return err
			}
		}
		for _, r := range MedicalRecords() {
			if err := createMissing(tx, r, r.ID); err != nil {
				return err
			}
		}
		for _, p := range Prescriptions() {
			if err := createMissing(tx, p, p.ID); err != nil {
				return err
			}
		}
		for _, a := range Appointments() {
			if err := createMissing(tx, a, a.ID); err != nil {
				return err
			}
		}
		for _, m := range Messages() {
			if err := createMissing(tx, m, m.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func createMissing(tx *gorm.DB, row any, id string) error {
	var count int64
	if err := tx.Model(row).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(row).Error
}
